// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrFormat is wrapped by errors returned for malformed Matrix Market input.
var ErrFormat = errors.New("sparse: invalid Matrix Market data")

// ReadMatrixMarket reads a sparse matrix in Matrix Market coordinate format.
// Supported fields are real, integer and pattern (pattern entries are 1), and
// supported symmetries are general, symmetric and skew-symmetric. For the
// symmetric variants only the lower triangle is stored in the file and the
// upper triangle is reconstructed.
func ReadMatrixMarket(r io.Reader) (*Triplet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}
	header := strings.Fields(strings.ToLower(sc.Text()))
	if len(header) != 5 || header[0] != "%%matrixmarket" || header[1] != "matrix" {
		return nil, fmt.Errorf("%w: bad header %q", ErrFormat, sc.Text())
	}
	if header[2] != "coordinate" {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrFormat, header[2])
	}
	field, symmetry := header[3], header[4]
	switch field {
	case "real", "integer", "pattern":
	default:
		return nil, fmt.Errorf("%w: unsupported field %q", ErrFormat, field)
	}
	switch symmetry {
	case "general", "symmetric", "skew-symmetric":
	default:
		return nil, fmt.Errorf("%w: unsupported symmetry %q", ErrFormat, symmetry)
	}

	line := 1
	var m *Triplet
	var nnz, read int
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if m == nil {
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: bad size line", ErrFormat, line)
			}
			var dims [3]int
			for k, f := range fields {
				v, err := strconv.Atoi(f)
				if err != nil || v < 0 {
					return nil, fmt.Errorf("%w: line %d: bad size %q", ErrFormat, line, f)
				}
				dims[k] = v
			}
			if symmetry != "general" && dims[0] != dims[1] {
				return nil, fmt.Errorf("%w: line %d: %s matrix not square", ErrFormat, line, symmetry)
			}
			m = NewTriplet(dims[0], dims[1])
			nnz = dims[2]
			continue
		}

		want := 3
		if field == "pattern" {
			want = 2
		}
		if len(fields) != want {
			return nil, fmt.Errorf("%w: line %d: expected %d fields", ErrFormat, line, want)
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		j, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		i--
		j--
		if i < 0 || m.r <= i || j < 0 || m.c <= j {
			return nil, fmt.Errorf("%w: line %d: index out of range", ErrFormat, line)
		}
		v := 1.0
		if field != "pattern" {
			v, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
		}
		if read == nnz {
			return nil, fmt.Errorf("%w: line %d: more than %d entries", ErrFormat, line, nnz)
		}
		read++

		m.Append(i, j, v)
		if i != j {
			switch symmetry {
			case "symmetric":
				m.Append(j, i, v)
			case "skew-symmetric":
				m.Append(j, i, -v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: missing size line", ErrFormat)
	}
	if read != nnz {
		return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrFormat, nnz, read)
	}
	return m, nil
}

// WriteMatrixMarket writes m in Matrix Market coordinate real general format.
func WriteMatrixMarket(w io.Writer, m *CSR) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("%%MatrixMarket matrix coordinate real general\n")
	fmt.Fprintf(bw, "%d %d %d\n", m.r, m.c, m.NNZ())
	m.DoNonZero(func(i, j int, v float64) {
		fmt.Fprintf(bw, "%d %d %s\n", i+1, j+1, strconv.FormatFloat(v, 'g', -1, 64))
	})
	return bw.Flush()
}
