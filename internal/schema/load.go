package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/linkview/internal/ir"
)

// Load error codes, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoObjects   = "E007" // No object schemas declared

	ErrCodeInvalidType = "E104" // Invalid property type (e.g., float)
	ErrCodeInvalidLink = "E105" // Malformed link property
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the schemas compiled from a directory.
type LoadResult struct {
	Schemas   []ir.ObjectSchema
	CUEValue  cue.Value
	FileCount int
}

// Registry builds a registry from the loaded schemas.
func (r *LoadResult) Registry() (*Registry, error) {
	return NewRegistry(r.Schemas...)
}

// LoadError represents an error that occurred while loading schemas.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads and compiles every object schema in a directory of CUE files.
// Compiled schemas are not cross-validated; run Validate on the result.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schemas directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schemas directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{CUEValue: value, FileCount: len(cueFiles)}
	schemas, errs := CompileAll(value, mode)
	result.Schemas = schemas
	return result, errs
}

// CompileAll compiles every field of the top-level "object" struct.
func CompileAll(value cue.Value, mode LoadMode) ([]ir.ObjectSchema, []error) {
	var (
		schemas []ir.ObjectSchema
		errs    []error
	)

	objectsVal := value.LookupPath(cue.ParsePath("object"))
	if !objectsVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeNoObjects, Message: "no object schemas found"}}
	}

	iter, err := objectsVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating objects: %v", err)}}
	}
	for iter.Next() {
		s, compileErr := CompileSchema(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "object."+iter.Label()))
			if mode == LoadModeFailFast {
				return schemas, errs
			}
			continue
		}
		schemas = append(schemas, *s)
	}

	if len(schemas) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoObjects, Message: "no object schemas found"})
	}
	return schemas, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compile error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    mapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

func mapFieldToErrorCode(field string) string {
	switch field {
	case "type":
		return ErrCodeInvalidType
	case "link":
		return ErrCodeInvalidLink
	default:
		return ErrCodeGeneric
	}
}
