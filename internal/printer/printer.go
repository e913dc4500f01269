package printer

import "github.com/slok/vfatimg/internal/model"

// Printer knows how to print image information in different formats.
type Printer interface {
	PrintImage(img model.Image) error
	PrintExtents(em model.ExtentMap) error
	PrintMessage(msg string) error
}
