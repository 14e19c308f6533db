package export

import (
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/iksnae/session-archive/internal"
)

// cborMode sorts map keys so equal sessions encode to equal bytes
var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// CBORExporter exports sessions as a single deterministic CBOR item
type CBORExporter struct{}

// Export exports a session to CBOR
func (e *CBORExporter) Export(session *internal.Session, w io.Writer) error {
	if err := cborMode.NewEncoder(w).Encode(session); err != nil {
		return &internal.ExportError{Format: "cbor", Err: err}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *CBORExporter) Extension() string {
	return "cbor"
}

// DecodeCBOR reads a session written by CBORExporter
func DecodeCBOR(data []byte) (*internal.Session, error) {
	var session internal.Session
	if err := cbor.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
