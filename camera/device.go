// Package camera talks to a polaroid-320 camera over its serial link:
// framing commands, retrying unresponsive reads, and fetching raw picture
// data. Grounded on original_source/comm.c and main.c.
package camera

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kobolt/polaroid-320/jpeg"
)

// ErrNotResponding is returned when the camera produces no data at all
// after both the immediate read and the one retry comm_command allows.
var ErrNotResponding = errors.New("camera: not responding")

// ErrUnexpectedHeader is returned when a response's first byte doesn't
// match what the command that produced it is documented to return.
var ErrUnexpectedHeader = errors.New("camera: unexpected response header")

// ErrShortResponse is returned when a response is too small to contain the
// fields the caller needs to read from it.
var ErrShortResponse = errors.New("camera: response too short")

// pictureDataHeaderSkip is the number of leading bytes every fetched
// picture carries that are not valid JPEG entropy data — main.c calls this
// "some fake header" and skips it unconditionally before decoding.
const pictureDataHeaderSkip = 6

// Device is a polaroid-320 camera reachable over rw. It owns no global
// state; nothing prevents a process from talking to several cameras
// through several Devices at once.
type Device struct {
	rw io.ReadWriter

	settleDelay time.Duration // after writing a command, before reading its reply
	retryDelay  time.Duration // before the one retry on an empty read
}

// New wraps rw (an open, already-configured serial connection: raw mode,
// 115200 baud, non-blocking reads) as a Device, using the reference tool's
// timing: a 10ms settle after every write, one retry after 3s of silence.
func New(rw io.ReadWriter) *Device {
	return &Device{
		rw:          rw,
		settleDelay: 10 * time.Millisecond,
		retryDelay:  3 * time.Second,
	}
}

// Command writes one command frame and returns its response, retrying once
// on an empty read before giving up with ErrNotResponding. argument == 0
// selects the no-argument frame shape; command == 0 selects the special
// init frame, matching comm_command's three cases.
func (d *Device) Command(command, argument byte) ([]byte, error) {
	var frame []byte
	switch {
	case command == 0:
		frame = buildInitFrame()
	default:
		frame = buildFrame(command, argument)
	}

	if _, err := d.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("camera: write command 0x%02X: %w", command, err)
	}
	time.Sleep(d.settleDelay)
	return d.readResponse()
}

// readResponse reads one reply frame. A zero-byte, no-error read is treated
// as "camera hasn't answered yet" (the portable equivalent of the
// reference's EAGAIN-on-a-nonblocking-fd) and retried once after
// retryDelay; a second empty read is ErrNotResponding.
//
// Checksum bytes present in every reply are read back but never verified —
// the same gap comm_command itself documents.
func (d *Device) readResponse() ([]byte, error) {
	buf := make([]byte, 64)

	n, err := d.rw.Read(buf)
	if n == 0 && err == nil {
		time.Sleep(d.retryDelay)
		n, err = d.rw.Read(buf)
	}
	if n == 0 && err == nil {
		return nil, ErrNotResponding
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("camera: read response: %w", err)
	}
	return buf[:n], nil
}

// Init sends the camera's wake-up frame. The reply's content is not
// inspected, but a camera that sends no reply at all fails with
// ErrNotResponding, as for any other command.
func (d *Device) Init() error {
	_, err := d.Command(CmdInit, 0)
	return err
}

// Info requests the camera's identification string.
func (d *Device) Info() (Info, error) {
	resp, err := d.Command(CmdInfo, 0)
	if err != nil {
		return Info{}, err
	}
	if len(resp) != 14 {
		return Info{}, fmt.Errorf("%w: camera info: got %d bytes, want 14", ErrShortResponse, len(resp))
	}
	if resp[0] != 0x00 {
		return Info{}, fmt.Errorf("%w: camera info: 0x%02X", ErrUnexpectedHeader, resp[0])
	}
	return Info{Text: printableString(resp[1:])}, nil
}

// State requests the camera's current sensor configuration.
func (d *Device) State() (State, error) {
	resp, err := d.Command(CmdState, 0)
	if err != nil {
		return State{}, err
	}
	if len(resp) != 24 {
		return State{}, fmt.Errorf("%w: camera state: got %d bytes, want 24", ErrShortResponse, len(resp))
	}
	if resp[0] != 0x02 {
		return State{}, fmt.Errorf("%w: camera state: 0x%02X", ErrUnexpectedHeader, resp[0])
	}
	return State{
		Width:  binary.BigEndian.Uint16(resp[2:4]),
		Height: binary.BigEndian.Uint16(resp[4:6]),
	}, nil
}

// Unlock sends the undocumented 0x0A command issued once during bring-up,
// right after State. Its reply is never inspected by the reference tool,
// only its absence would matter (ErrNotResponding on no reply).
func (d *Device) Unlock() error {
	_, err := d.Command(CmdUnknownA, 0)
	return err
}

// PictureCount reports how many pictures are stored on the camera.
func (d *Device) PictureCount() (int, error) {
	resp, err := d.Command(CmdPictureCount, 0)
	if err != nil {
		return 0, err
	}
	if len(resp) < 1 {
		return 0, fmt.Errorf("%w: picture count", ErrShortResponse)
	}
	if resp[0] != 0x03 {
		return 0, fmt.Errorf("%w: picture count: 0x%02X", ErrUnexpectedHeader, resp[0])
	}
	if len(resp) < 2 {
		return 0, fmt.Errorf("%w: picture count", ErrShortResponse)
	}
	return int(resp[1]), nil
}

// PictureSize reports the byte size of picture number pictureNo (1-based).
func (d *Device) PictureSize(pictureNo byte) (int, error) {
	resp, err := d.Command(CmdPictureSize, pictureNo)
	if err != nil {
		return 0, err
	}
	if len(resp) != 7 {
		return 0, fmt.Errorf("%w: picture size: got %d bytes, want 7", ErrShortResponse, len(resp))
	}
	if resp[0] != 0x06 {
		return 0, fmt.Errorf("%w: picture size: 0x%02X", ErrUnexpectedHeader, resp[0])
	}
	return int(binary.BigEndian.Uint32(resp[1:5])), nil
}

// Erase deletes every picture stored on the camera.
func (d *Device) Erase() error {
	_, err := d.Command(CmdErase, 0)
	return err
}

// FetchPicture reads size bytes of picture pictureNo's raw data, a direct
// port of comm_get_picture_data: one 0x05 request frame, then repeated
// 5-byte frame headers (checked for 0x04) around up to 2000-byte chunks and
// a 2-byte, unverified checksum, until size bytes have been read.
func (d *Device) FetchPicture(pictureNo byte, size int) ([]byte, error) {
	if _, err := d.rw.Write(buildFetchFrame(pictureNo)); err != nil {
		return nil, fmt.Errorf("camera: write fetch command: %w", err)
	}

	out := make([]byte, 0, size)
	remaining := size
	for remaining > 0 {
		time.Sleep(d.settleDelay)

		header := make([]byte, 5)
		if _, err := io.ReadFull(d.rw, header); err != nil {
			return nil, fmt.Errorf("camera: read picture frame header: %w", err)
		}
		if header[0] != 0x04 {
			return nil, fmt.Errorf("%w: picture frame: 0x%02X", ErrUnexpectedHeader, header[0])
		}

		limit := remaining
		if limit > 2000 {
			limit = 2000
		}
		chunk := make([]byte, limit)
		if _, err := io.ReadFull(d.rw, chunk); err != nil {
			return nil, fmt.Errorf("camera: read picture chunk: %w", err)
		}
		out = append(out, chunk...)
		remaining -= limit

		checksum := make([]byte, 2)
		if _, err := io.ReadFull(d.rw, checksum); err != nil {
			return nil, fmt.Errorf("camera: read picture checksum: %w", err)
		}
	}
	return out, nil
}

// ByteSource adapts raw picture data (as returned by FetchPicture) into a
// jpeg.ByteSource, skipping the fake leading header every picture carries.
func ByteSource(data []byte) jpeg.ByteSource {
	i := pictureDataHeaderSkip
	return func() int {
		if i >= len(data) {
			return jpeg.EOF
		}
		b := data[i]
		i++
		return int(b)
	}
}
