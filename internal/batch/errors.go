package batch

import (
	"errors"

	"github.com/Alia5/pbtmpl/internal/configpaths"
)

var (
	// ErrNoSchemaSource is returned when neither schema sources nor a
	// prebuilt descriptor set are configured.
	ErrNoSchemaSource = errors.New("no schema source: set proto files or a descriptor set file")

	ErrNoProjectDir = configpaths.ErrNoProjectDir

	ErrUnsupportedFormat = errors.New("unsupported document format")
)
