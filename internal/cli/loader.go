package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/tern-db/tern/internal/catalog"
)

// LoadMode controls how errors are handled during catalog loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadError represents an error that occurred during catalog loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Catalog validation errors
	ErrCodeIndexNoFields = "E101" // Index defines no fields
	ErrCodeIndexDecode   = "E102" // Index definition has wrong shape

	// Plan fixture validation errors
	ErrCodeFixtureCollection = "E111" // Missing collection name
	ErrCodeFixtureVariable   = "E112" // Missing collection variable
	ErrCodeFixtureExpr       = "E113" // Malformed filter expression
)

// LoadCatalog loads collection and index definitions from a directory of CUE
// files into an in-memory catalog.
//
// The expected shape is:
//
//	collection: users: indexes: idx_a: {
//		fields: ["a"]
//		unique: true
//	}
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadCatalog(dir string, mode LoadMode) (*catalog.MemoryCatalog, []error) {
	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
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

	cat := catalog.NewMemoryCatalog()
	var errs []error

	collectionsVal := value.LookupPath(cue.ParsePath("collection"))
	if !collectionsVal.Exists() {
		return cat, []error{&LoadError{Code: ErrCodeGeneric, Message: "no collections found in catalog"}}
	}

	iter, iterErr := collectionsVal.Fields()
	if iterErr != nil {
		return cat, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating collections: %v", iterErr)}}
	}

	for iter.Next() {
		name := iter.Label()
		coll, collErrs := decodeCollection(name, iter.Value(), mode)
		errs = append(errs, collErrs...)
		if len(collErrs) > 0 && mode == LoadModeFailFast {
			return cat, errs
		}
		cat.AddCollection(coll)
	}

	return cat, errs
}

// decodeCollection extracts one collection and its indexes from a CUE value.
func decodeCollection(name string, v cue.Value, mode LoadMode) (catalog.Collection, []error) {
	coll := catalog.Collection{Name: name}
	var errs []error

	indexesVal := v.LookupPath(cue.ParsePath("indexes"))
	if !indexesVal.Exists() {
		return coll, nil
	}

	iter, iterErr := indexesVal.Fields()
	if iterErr != nil {
		return coll, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating indexes of %q: %v", name, iterErr)}}
	}

	for iter.Next() {
		idxName := iter.Label()

		var spec struct {
			Fields []string `json:"fields"`
			Unique bool     `json:"unique"`
			Sparse bool     `json:"sparse"`
		}
		if err := iter.Value().Decode(&spec); err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeIndexDecode,
				Message: fmt.Sprintf("index %s.%s: %v", name, idxName, err),
			})
			if mode == LoadModeFailFast {
				return coll, errs
			}
			continue
		}
		if len(spec.Fields) == 0 {
			errs = append(errs, &LoadError{
				Code:    ErrCodeIndexNoFields,
				Message: fmt.Sprintf("index %s.%s defines no fields", name, idxName),
			})
			if mode == LoadModeFailFast {
				return coll, errs
			}
			continue
		}

		coll.Indexes = append(coll.Indexes, catalog.Index{
			Name:       idxName,
			Collection: name,
			Fields:     spec.Fields,
			Unique:     spec.Unique,
			Sparse:     spec.Sparse,
		})
	}

	return coll, errs
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
