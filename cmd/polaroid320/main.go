// Command polaroid320 talks to a polaroid-320 camera over a serial link,
// fetches whatever pictures it holds, and decodes them to PPM/PGM (or dumps
// raw JPEG-like data), grounded in original_source/main.c's option parsing
// and download loop.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kobolt/polaroid-320/camera"
	"github.com/kobolt/polaroid-320/eventlog"
	"github.com/kobolt/polaroid-320/jpeg"
	"github.com/kobolt/polaroid-320/pnm"
)

const defaultDevice = "/dev/ttyS0"

// options mirrors main.c's output_type_t plus this rewrite's additions
// (-mqtt-broker, -batch).
type options struct {
	device     string
	color      bool
	grey       bool
	raw        bool
	nodecode   bool
	erase      bool
	mqttBroker string
	batchFile  string
}

func parseOptions(args []string) (*options, error) {
	fs := flag.NewFlagSet("polaroid320", flag.ContinueOnError)
	opt := &options{}
	fs.StringVar(&opt.device, "device", defaultDevice, "serial device the camera is attached to")
	fs.BoolVar(&opt.color, "color", false, "color output, PPM format (the default)")
	fs.BoolVar(&opt.grey, "grey", false, "greyscale output, luminance only, PGM format")
	fs.BoolVar(&opt.raw, "raw", false, "raw component output, no quantization, four PGM files")
	fs.BoolVar(&opt.nodecode, "nodecode", false, "dump raw picture data, skip JPEG decoding")
	fs.BoolVar(&opt.erase, "erase", false, "erase all pictures on the camera and exit")
	fs.StringVar(&opt.mqttBroker, "mqtt-broker", "", "MQTT broker for picture-downloaded notifications, e.g. tcp://localhost:1883")
	fs.StringVar(&opt.batchFile, "batch", "", "read command lines from FILE instead of running once")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	chosen := 0
	for _, b := range []bool{opt.color, opt.grey, opt.raw, opt.nodecode, opt.erase} {
		if b {
			chosen++
		}
	}
	if chosen > 1 {
		return nil, fmt.Errorf("only one of -color, -grey, -raw, -nodecode or -erase can be set")
	}
	if chosen == 0 {
		opt.color = true
	}
	return opt, nil
}

func main() {
	opt, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if opt.batchFile != "" {
		if err := runBatch(opt.batchFile); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(opt); err != nil {
		log.Fatal(err)
	}
}

// run performs one full session against the camera: bring-up, optional
// erase, or a download-and-decode loop over every stored picture.
func run(opt *options) error {
	f, err := os.OpenFile(opt.device, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", opt.device, err)
	}
	defer f.Close()

	dev := camera.New(f)

	var publisher eventlog.Publisher = eventlog.NoopPublisher{}
	if opt.mqttBroker != "" {
		mp, err := eventlog.NewMQTTPublisher(opt.mqttBroker, "polaroid320", "")
		if err != nil {
			return fmt.Errorf("mqtt broker: %w", err)
		}
		defer mp.Close()
		publisher = mp
	}

	if err := dev.Init(); err != nil {
		return fmt.Errorf("init camera: %w", err)
	}
	info, err := dev.Info()
	if err != nil {
		return fmt.Errorf("camera info: %w", err)
	}
	log.Printf("camera information: %s", info.Text)

	if _, err := dev.State(); err != nil {
		return fmt.Errorf("camera state: %w", err)
	}
	if err := dev.Unlock(); err != nil {
		return fmt.Errorf("camera unlock: %w", err)
	}

	if opt.erase {
		if err := dev.Erase(); err != nil {
			return fmt.Errorf("erase: %w", err)
		}
		log.Print("--- ALL PICTURES ERASED ---")
		return nil
	}

	count, err := dev.PictureCount()
	if err != nil {
		return fmt.Errorf("picture count: %w", err)
	}
	log.Printf("pictures on camera: %d", count)

	for i := 1; i <= count; i++ {
		if err := fetchAndWrite(dev, opt, byte(i), publisher); err != nil {
			log.Printf("picture %d: %v", i, err)
		}
	}
	return nil
}

// closer is the part of pnm's assemblers main.go needs to flush buffered
// output once a picture's blocks have all arrived.
type closer interface {
	Close() error
}

func fetchAndWrite(dev *camera.Device, opt *options, pictureNo byte, publisher eventlog.Publisher) error {
	size, err := dev.PictureSize(pictureNo)
	if err != nil {
		return fmt.Errorf("picture size: %w", err)
	}
	data, err := dev.FetchPicture(pictureNo, size)
	if err != nil {
		return fmt.Errorf("fetch picture data: %w", err)
	}

	switch {
	case opt.nodecode:
		return writeRawData(pictureNo, data, publisher)
	case opt.raw:
		return decodeToComponentFiles(pictureNo, data, publisher)
	case opt.grey:
		return decodeToSingleFile(pictureNo, data, "pgm", 4, 0, 0, publisher,
			func(w io.Writer) (jpeg.BlockReceiver, closer, error) {
				a, err := pnm.NewPGMAssembler(w, jpeg.ComponentY1)
				return a, a, err
			})
	default: // color
		return decodeToSingleFile(pictureNo, data, "ppm", 4, 2, 2, publisher,
			func(w io.Writer) (jpeg.BlockReceiver, closer, error) {
				a, err := pnm.NewPPMAssembler(w)
				return a, a, err
			})
	}
}

func decodeToSingleFile(pictureNo byte, data []byte, ext string, yq, cbq, crq int,
	publisher eventlog.Publisher, newAssembler func(io.Writer) (jpeg.BlockReceiver, closer, error)) error {

	f, err := openExclusiveFile(int(pictureNo), ext)
	if err != nil {
		return err
	}
	defer f.Close()

	recv, c, err := newAssembler(f)
	if err != nil {
		return err
	}
	if err := jpeg.Decode(camera.ByteSource(data), recv, yq, cbq, crq); err != nil {
		return err
	}
	if err := c.Close(); err != nil {
		return err
	}
	return publisher.Publish(eventlog.Event{PictureIndex: int(pictureNo), Bytes: len(data), Format: ext})
}

// decodeToComponentFiles re-decodes the same picture data once per
// component, same as main.c's OUTPUT_RAW case: jpeg_decode is deterministic
// over a fixed byte source, so four independent passes with no
// quantization (q=1,1,1) produce one PGM per component.
func decodeToComponentFiles(pictureNo byte, data []byte, publisher eventlog.Publisher) error {
	exts := [4]string{"y1.pgm", "cb.pgm", "cr.pgm", "y2.pgm"}
	components := [4]jpeg.Component{jpeg.ComponentY1, jpeg.ComponentCb, jpeg.ComponentCr, jpeg.ComponentY2}

	for i, ext := range exts {
		if err := func() error {
			f, err := openExclusiveFile(int(pictureNo), ext)
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := pnm.NewPGMAssembler(f, components[i])
			if err != nil {
				return err
			}
			if err := jpeg.Decode(camera.ByteSource(data), a, 1, 1, 1); err != nil {
				return err
			}
			return a.Close()
		}(); err != nil {
			return err
		}
	}
	return publisher.Publish(eventlog.Event{PictureIndex: int(pictureNo), Bytes: len(data), Format: "raw"})
}

func writeRawData(pictureNo byte, data []byte, publisher eventlog.Publisher) error {
	f, err := openExclusiveFile(int(pictureNo), "dat")
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write raw picture data: %w", err)
	}
	return publisher.Publish(eventlog.Event{PictureIndex: int(pictureNo), Bytes: len(data), Format: "dat"})
}

// openExclusiveFile never overwrites an existing file: it tries
// polaroid.NN.ext, then polaroid.NN.ext.1, .2, ... until one doesn't
// already exist, a direct port of main.c's open_exclusive_file.
func openExclusiveFile(pictureNo int, ext string) (*os.File, error) {
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf("polaroid.%02d.%s", pictureNo, ext)
		if attempt > 0 {
			name = fmt.Sprintf("polaroid.%02d.%s.%d", pictureNo, ext, attempt)
		}
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
	}
}
