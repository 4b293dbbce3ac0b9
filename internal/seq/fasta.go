package seq

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FastaRecord represents a single FASTA record (header and sequence).
type FastaRecord struct {
	Header   string
	Sequence string
}

// WriteFasta writes records to w in FASTA format. Folding tools accept
// this shape on standard input.
func WriteFasta(w io.Writer, records ...FastaRecord) error {
	for _, rec := range records {
		header := rec.Header
		if header == "" {
			header = "sequence"
		}
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", header, rec.Sequence); err != nil {
			return fmt.Errorf("seq: write fasta: %w", err)
		}
	}
	return nil
}

// FastaInput renders a single-sequence FASTA record for piping to a
// tool's standard input.
func FastaInput(header string, sequence NucleotideSequence) []byte {
	var b strings.Builder
	_ = WriteFasta(&b, FastaRecord{Header: header, Sequence: sequence.String()})
	return []byte(b.String())
}

// ParseFasta reads FASTA records from r. Lines beginning with '>'
// denote headers; sequence lines are concatenated.
func ParseFasta(r io.Reader) ([]FastaRecord, error) {
	scanner := bufio.NewScanner(r)
	var records []FastaRecord
	var current FastaRecord
	inRecord := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if inRecord {
				records = append(records, current)
			}
			current = FastaRecord{Header: strings.TrimPrefix(line, ">")}
			inRecord = true
		} else {
			if !inRecord {
				return nil, fmt.Errorf("seq: sequence data before first FASTA header")
			}
			current.Sequence += line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("seq: read fasta: %w", err)
	}
	if inRecord {
		records = append(records, current)
	}
	return records, nil
}
