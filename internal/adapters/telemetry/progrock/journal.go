package progrock

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
)

// Journal is a progrock.Writer that renders the tape as plain text lines.
// Each vertex prints once when it starts and once when it finishes; log
// output is printed line by line, prefixed with the vertex name.
type Journal struct {
	mu       sync.Mutex
	out      io.Writer
	names    map[string]string
	started  map[string]bool
	finished map[string]bool
	partial  map[string]*bytes.Buffer
	order    []string
}

var _ progrock.Writer = (*Journal)(nil)

// NewJournal creates a Journal writing to out.
func NewJournal(out io.Writer) *Journal {
	return &Journal{
		out:      out,
		names:    make(map[string]string),
		started:  make(map[string]bool),
		finished: make(map[string]bool),
		partial:  make(map[string]*bytes.Buffer),
	}
}

// WriteStatus renders a single status update.
func (j *Journal) WriteStatus(update *progrock.StatusUpdate) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, v := range update.Vertexes {
		if err := j.vertex(v); err != nil {
			return err
		}
	}
	for _, l := range update.Logs {
		if err := j.log(l.GetVertex(), l.GetData()); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) vertex(v *progrock.Vertex) error {
	id := v.GetId()
	j.names[id] = v.GetName()

	if !j.started[id] {
		j.started[id] = true
		if _, err := fmt.Fprintf(j.out, "=> %s\n", v.GetName()); err != nil {
			return err
		}
	}
	if v.Completed == nil || j.finished[id] {
		return nil
	}
	j.finished[id] = true
	if err := j.flush(id); err != nil {
		return err
	}
	if v.Error != nil {
		_, err := fmt.Fprintf(j.out, "FAILED %s: %s\n", v.GetName(), v.GetError())
		return err
	}
	_, err := fmt.Fprintf(j.out, "DONE %s\n", v.GetName())
	return err
}

func (j *Journal) log(id string, data []byte) error {
	buf, ok := j.partial[id]
	if !ok {
		buf = &bytes.Buffer{}
		j.partial[id] = buf
		j.order = append(j.order, id)
	}
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line stays buffered until more data or completion.
			buf.Reset()
			buf.Write(line)
			return nil
		}
		if _, err := fmt.Fprintf(j.out, "%s | %s", j.names[id], line); err != nil {
			return err
		}
	}
}

// flush prints any buffered partial line for the vertex.
func (j *Journal) flush(id string) error {
	buf, ok := j.partial[id]
	if !ok || buf.Len() == 0 {
		return nil
	}
	line := buf.String()
	buf.Reset()
	_, err := fmt.Fprintf(j.out, "%s | %s\n", j.names[id], line)
	return err
}

// Close prints remaining partial log lines. The underlying writer is left open.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, id := range j.order {
		if err := j.flush(id); err != nil {
			return err
		}
	}
	return nil
}
