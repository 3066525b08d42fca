package io

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
)

// ROM_WORD_SIZE is the size in bytes of one image word.
const ROM_WORD_SIZE = 4

// Rom is a program image: a flat sequence of little-endian 32-bit
// words with no header, length, or symbol table.
type Rom struct {
	Data []uint32
}

// Bytes returns the raw image.
func (rom *Rom) Bytes() []byte {
	buff := make([]byte, 0, len(rom.Data)*ROM_WORD_SIZE)
	for _, word := range rom.Data {
		buff = binary.LittleEndian.AppendUint32(buff, word)
	}

	return buff
}

// Reader returns a reader over the raw image.
func (rom *Rom) Reader() io.Reader {
	return bytes.NewReader(rom.Bytes())
}

// Marshal writes the raw image to a writer.
func (rom *Rom) Marshal(file io.Writer) (err error) {
	_, err = file.Write(rom.Bytes())

	return
}

// Unmarshal loads the image from a reader, replacing any existing data.
// A trailing partial word is zero padded.
func (rom *Rom) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	if tail := len(data) % ROM_WORD_SIZE; tail != 0 {
		data = append(data, make([]byte, ROM_WORD_SIZE-tail)...)
	}

	rom.Data = make([]uint32, 0, len(data)/ROM_WORD_SIZE)
	for n := 0; n < len(data); n += ROM_WORD_SIZE {
		rom.Data = append(rom.Data, binary.LittleEndian.Uint32(data[n:]))
	}

	return
}

// Save writes the image to a named file in a file system.
func (rom *Rom) Save(filesys CreateFS, name string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrImage{Name: name, Err: err}
		}
	}()

	file, err := filesys.Create(name)
	if err != nil {
		return
	}

	err = rom.Marshal(file)
	if err != nil {
		file.Close()
		return
	}

	err = file.Close()
	return
}

// Open loads the image from a named file in a file system.
func (rom *Rom) Open(filesys fs.FS, name string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrImage{Name: name, Err: err}
		}
	}()

	file, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	err = rom.Unmarshal(file)
	return
}
