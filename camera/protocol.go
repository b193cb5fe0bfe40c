package camera

// Command bytes, grounded on original_source/comm.c and main.c. The camera
// never documents these anywhere but the reference tool's call sites.
const (
	CmdInit         byte = 0x00
	CmdInfo         byte = 0x01
	CmdState        byte = 0x02
	CmdPictureCount byte = 0x03
	CmdPictureSize  byte = 0x04
	CmdFetchPicture byte = 0x05
	CmdErase        byte = 0x07
	CmdUnknownA     byte = 0x0A // sent once during bring-up; reply is ignored
)

// syncWord prefixes every command frame the camera understands.
var syncWord = [4]byte{0xE6, 0xE6, 0xE6, 0xE6}

// buildFrame builds one of the two general command frame shapes from
// comm_command: an 8-byte frame with an argument, complement-checked in
// both the command and argument bytes, or a 7-byte frame with no argument,
// complement-checked only in the command byte. command == 0 is reserved
// for buildInitFrame.
func buildFrame(command, argument byte) []byte {
	if argument > 0 {
		return []byte{
			syncWord[0], syncWord[1], syncWord[2], syncWord[3],
			command, argument, command ^ 0xFF, argument ^ 0xFF,
		}
	}
	return []byte{
		syncWord[0], syncWord[1], syncWord[2], syncWord[3],
		command, command ^ 0xFF, 0xFF,
	}
}

// buildInitFrame builds the camera's special wake-up frame: eight sync
// bytes followed by a null command and its complement, sent once before
// any other command (comm_command's command == 0 && argument == 0 case).
func buildInitFrame() []byte {
	return []byte{
		0xE6, 0xE6, 0xE6, 0xE6, 0xE6, 0xE6, 0xE6, 0xE6,
		0x00, 0xFF, 0xFF,
	}
}

// buildFetchFrame builds the picture-data request frame, a distinct shape
// from buildFrame's general pattern: the complement lands on pictureNo, not
// on CmdFetchPicture, and a fixed 0xFA separates them (comm_get_picture_data).
func buildFetchFrame(pictureNo byte) []byte {
	return []byte{
		syncWord[0], syncWord[1], syncWord[2], syncWord[3],
		CmdFetchPicture, pictureNo, 0xFA, pictureNo ^ 0xFF,
	}
}
