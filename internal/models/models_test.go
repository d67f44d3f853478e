package models

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("should name file and row", func(t *testing.T) {
		appErr := &AppError{FileID: 2, Row: 7, Message: "Failed to read record from CSV", Err: errors.New("bare quote")}

		assert.Equal(t, "FileID 2 row 7: Failed to read record from CSV - bare quote", appErr.Error())
	})

	t.Run("should include the application when present", func(t *testing.T) {
		appErr := &AppError{FileID: 1, Message: "bad row", Application: &Application{ID: "9", ApplicationDate: "2024-01-01"}}

		assert.Equal(t, `FileID 1: bad row - Application: {"id":"9","application_date":"2024-01-01","contracts":null}`, appErr.Error())
	})
}

func TestAppError_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]AppError{{FileID: 3, Message: "Invalid CSV header", Err: errors.New("missing required columns: contracts"), Fatal: true}})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"file_id":3,"message":"Invalid CSV header","error":"missing required columns: contracts","fatal":true}]`, string(data))
}
