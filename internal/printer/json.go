package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/vfatimg/internal/model"
)

// JSONPrinter prints image information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// imageOutput represents a built image output.
type imageOutput struct {
	BuildID            string    `json:"build_id,omitempty"`
	Path               string    `json:"path"`
	Label              string    `json:"label,omitempty"`
	PartitionOffset    int64     `json:"partition_offset"`
	VirtualSizeBytes   int64     `json:"virtual_size_bytes"`
	AllocatedSizeBytes int64     `json:"allocated_size_bytes"`
	CompressedPath     string    `json:"compressed_path,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// extentMapOutput represents the extent map output.
type extentMapOutput struct {
	Path               string         `json:"path"`
	VirtualSizeBytes   int64          `json:"virtual_size_bytes"`
	AllocatedSizeBytes int64          `json:"allocated_size_bytes"`
	Sparse             bool           `json:"sparse"`
	Extents            []extentOutput `json:"extents"`
}

type extentOutput struct {
	Kind  string `json:"kind"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintImage prints a built image in JSON format.
func (j *JSONPrinter) PrintImage(img model.Image) error {
	return j.encode(imageOutput{
		BuildID:            img.BuildID,
		Path:               img.Path,
		Label:              img.Label,
		PartitionOffset:    img.PartitionOffset,
		VirtualSizeBytes:   img.VirtualSizeBytes,
		AllocatedSizeBytes: img.AllocatedSizeBytes,
		CompressedPath:     img.CompressedPath,
		CreatedAt:          img.CreatedAt,
	})
}

// PrintExtents prints the extent map in JSON format.
func (j *JSONPrinter) PrintExtents(em model.ExtentMap) error {
	out := extentMapOutput{
		Path:               em.Path,
		VirtualSizeBytes:   em.VirtualSizeBytes,
		AllocatedSizeBytes: em.AllocatedSizeBytes,
		Sparse:             em.Sparse,
		Extents:            make([]extentOutput, 0, len(em.Extents)),
	}
	for _, e := range em.Extents {
		out.Extents = append(out.Extents, extentOutput{Kind: string(e.Kind), Start: e.Start, End: e.End})
	}

	return j.encode(out)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
