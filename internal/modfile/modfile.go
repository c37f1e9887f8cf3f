// Package modfile reads and writes persisted module interface files.
//
// A module file is the serialized interface of exactly one module:
// a 4-byte magic, a 2-byte schema version, a 2-byte producer id, then
// one encoded translation unit whose items are a single Module in
// interface form. No trailing data is permitted.
package modfile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
	"github.com/lcompilers/lasr/internal/serde"
)

// Ext is the conventional module file extension.
const Ext = ".lmod"

// Producer ids recorded in the file header.
const (
	ProducerLASR uint16 = iota + 1
	ProducerGFortranImport
	ProducerBindCImport
)

var producerNames = map[uint16]string{
	ProducerLASR:           "lasr",
	ProducerGFortranImport: "gfortran-import",
	ProducerBindCImport:    "bindc-import",
}

// ProducerName returns the registered name of a producer id, or a
// numeric placeholder for ids this build does not know.
func ProducerName(id uint16) string {
	if name, ok := producerNames[id]; ok {
		return name
	}
	return fmt.Sprintf("producer-%d", id)
}

// Header is the decoded file header plus the body digest.
type Header struct {
	Version  uint16
	Producer uint16
	Digest   string
}

// Encode renders the complete module file for a unit holding one
// interface module.
func Encode(u *asr.TranslationUnit, producer uint16) ([]byte, error) {
	if _, err := UnitModule(u); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 256)
	buf = append(buf, serde.Magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, serde.SchemaVersion)
	buf = binary.LittleEndian.AppendUint16(buf, producer)
	buf = append(buf, serde.EncodeBody(u)...)
	return buf, nil
}

// Decode parses a module file. Trailing bytes, unknown versions, and
// units that are not a single module are all rejected.
func Decode(data []byte) (*asr.TranslationUnit, *asr.Module, Header, error) {
	var hdr Header
	if len(data) < 8 {
		return nil, nil, hdr, errors.New(errors.SER002, "module file too short: %d bytes", len(data))
	}
	if string(data[:4]) != string(serde.Magic[:]) {
		return nil, nil, hdr, errors.New(errors.MOD001, "bad module file magic %q", data[:4])
	}
	hdr.Version = binary.LittleEndian.Uint16(data[4:6])
	if hdr.Version != serde.SchemaVersion {
		return nil, nil, hdr, errors.New(errors.SER001, "unsupported module file version %d", hdr.Version)
	}
	hdr.Producer = binary.LittleEndian.Uint16(data[6:8])
	u, err := serde.DecodeBody(data[8:])
	if err != nil {
		return nil, nil, hdr, err
	}
	m, err := UnitModule(u)
	if err != nil {
		return nil, nil, hdr, err
	}
	hdr.Digest = digest(data[8:])
	return u, m, hdr, nil
}

// UnitModule extracts the single interface module a module-file unit
// must hold.
func UnitModule(u *asr.TranslationUnit) (*asr.Module, error) {
	if len(u.Items) != 1 {
		return nil, errors.New(errors.MOD003, "module file unit has %d items, want 1", len(u.Items))
	}
	m, ok := u.Items[0].(*asr.Module)
	if !ok {
		return nil, errors.New(errors.MOD003, "module file item is %T, want a module", u.Items[0])
	}
	switch m.Abi {
	case asr.ABILFortranModule, asr.ABIGFortranModule, asr.ABIBindC:
	default:
		return nil, errors.New(errors.MOD003, "module %q has abi %s, want an interface abi", m.Name(), m.Abi)
	}
	return m, nil
}

// WriteFile persists a unit atomically: the bytes land in a temp file
// beside the target and are renamed into place, so readers never see a
// half-written interface.
func WriteFile(path string, u *asr.TranslationUnit, producer uint16) error {
	data, err := Encode(u, producer)
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFile loads and decodes a module file.
func ReadFile(path string) (*asr.TranslationUnit, *asr.Module, Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, Header{}, err
	}
	return Decode(data)
}

// digest is the deterministic digest of the encoded body, stored in the
// cache index so importers can detect interface changes cheaply.
func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
