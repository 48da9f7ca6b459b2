// Package export writes a generated puzzle as a JSON document for a quiz
// front-end: the sign, the car paths and one ranking prompt per car.
package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/geo"
	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
)

// ordinals name the positions a car can be ranked at.
var ordinals = []string{"first", "second", "third", "fourth"}

// Document is the root JSON structure
type Document struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Sides     []core.Direction  `json:"sides"`
	Vorfahrt  [2]core.Direction `json:"vorfahrt"`
	Roads     []Road            `json:"roads"`
	Cars      []CarJSON         `json:"cars"`
	Conflicts []geo.Conflict    `json:"conflicts"`
	Questions []Question        `json:"questions"`
	SVG       string            `json:"svg,omitempty"`
}

// Road is one compass side of the intersection.
type Road struct {
	Side     core.Direction `json:"side"`
	Active   bool           `json:"active"`
	Vorfahrt bool           `json:"vorfahrt"`
}

// CarJSON represents one car and its path
type CarJSON struct {
	Color         string         `json:"color"`
	Origin        core.Direction `json:"origin"`
	Destination   core.Direction `json:"destination"`
	Path          []core.Vector2 `json:"path"`
	WKT           string         `json:"wkt"`
	Length        float64        `json:"length"`
	ThroughCenter bool           `json:"throughCenter"`
}

// Question asks which car(s) go at a given position. Several cars may share
// a position, so answers are a subset of Options.
type Question struct {
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
}

// NewDocument builds a document with a fresh random ID and the current time.
func NewDocument(sign *core.Sign) (Document, error) {
	return Build(uuid.New().String(), time.Now().UTC(), sign)
}

// Build assembles the document for sign.
func Build(id string, createdAt time.Time, sign *core.Sign) (Document, error) {
	doc := Document{
		ID:        id,
		CreatedAt: createdAt,
		Sides:     append([]core.Direction(nil), sign.Sides...),
		Vorfahrt:  sign.Vorfahrt,
		Cars:      make([]CarJSON, 0, len(sign.Cars)),
		Conflicts: []geo.Conflict{},
	}

	for _, d := range core.AllDirections() {
		doc.Roads = append(doc.Roads, Road{
			Side:     d,
			Active:   sign.HasSide(d),
			Vorfahrt: sign.HasVorfahrt(d),
		})
	}

	options := make([]string, 0, len(sign.Cars))
	for _, car := range sign.Cars {
		wkt, err := geo.PathWKT(car)
		if err != nil {
			return Document{}, err
		}
		length, err := geo.PathLength(car)
		if err != nil {
			return Document{}, err
		}
		throughCenter, err := geo.TouchesCenter(car)
		if err != nil {
			return Document{}, err
		}
		doc.Cars = append(doc.Cars, CarJSON{
			Color:         car.Color.Name,
			Origin:        car.Origin,
			Destination:   car.Destination,
			Path:          append([]core.Vector2(nil), car.Path...),
			WKT:           wkt,
			Length:        length,
			ThroughCenter: throughCenter,
		})
		options = append(options, car.Color.Name)
	}

	conflicts, err := geo.Conflicts(sign)
	if err != nil {
		return Document{}, err
	}
	if conflicts != nil {
		doc.Conflicts = conflicts
	}

	doc.Questions = Questions(options)
	return doc, nil
}

// Questions returns one ranking prompt per car, in position order.
func Questions(colors []string) []Question {
	n := len(colors)
	if n > len(ordinals) {
		n = len(ordinals)
	}
	qs := make([]Question, n)
	for i := 0; i < n; i++ {
		qs[i] = Question{
			Position: i + 1,
			Prompt:   fmt.Sprintf("Which colored car(s) go(es) %s?", ordinals[i]),
			Options:  append([]string(nil), colors...),
		}
	}
	return qs
}

// FileName returns the document's file name inside an output directory.
func FileName(doc Document, compress bool) string {
	if compress {
		return doc.ID + ".json.gz"
	}
	return doc.ID + ".json"
}

// Write stores doc in dir, gzipped if compress is set, and returns the path.
func Write(dir string, doc Document, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(dir, FileName(doc, compress))
	if err := writeFile(outputPath, doc, compress); err != nil {
		return "", err
	}
	return outputPath, nil
}

func writeFile(path string, doc Document, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := encode(f, doc, compress); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// encode writes doc as JSON to w. The gzip trailer is only written on Close,
// so its error is returned too.
func encode(w io.Writer, doc Document, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(doc)
	}

	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(doc); err != nil {
		gzWriter.Close()
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
