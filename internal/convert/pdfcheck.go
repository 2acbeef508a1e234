package convert

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tovald/pdfsmith/internal/errors"
)

// ValidatePDF checks that the file at path is a well-formed PDF.
// Used on direct PDF uploads before they land in the PDF directory.
func ValidatePDF(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return errors.NewInvalidRequest("uploaded file is not a valid PDF: " + err.Error())
	}
	return nil
}
