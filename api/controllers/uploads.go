package controllers

import (
	"net/http"

	"github.com/velumart/velumart-backend/api/validators"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
	"github.com/velumart/velumart-backend/pkg/storage"
)

// saveUpload stores the named file part and returns its relative path, or
// nil when the part was not submitted.
func saveUpload(r *http.Request, store *storage.Store, subdir, field string) (*string, error) {
	file, header, err := validators.FormFile(r, field)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, nil
	}
	defer func() { _ = file.Close() }()

	path, err := store.Save(subdir, header.Filename, file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "storing upload failed")
	}
	return &path, nil
}
