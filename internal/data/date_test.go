package data_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal/data"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	// iso format
	date, err := data.ParseDate("2001-11-16")
	assert.Nil(t, err)
	assert.Equal(t, "2001-11-16", date.String())

	// alternate format
	date, err = data.ParseDate("16-Nov-01")
	assert.Nil(t, err)
	assert.Equal(t, "2001-11-16", date.String())

	// unsupported format
	_, err = data.ParseDate("11/16/2001")
	assert.NotNil(t, err)
	assert.Equal(t, "Invalid date format, startDate can only be in the"+
		" format yyyy-MM-dd or dd-MMM-yy", err.Error())
}

func TestDateJson(t *testing.T) {
	date := data.NewDate(2001, time.November, 16)
	bytes, err := json.Marshal(&date)
	assert.Nil(t, err)
	assert.Equal(t, `"2001-11-16"`, string(bytes))

	var dateRead data.Date

	err = json.Unmarshal(bytes, &dateRead)
	assert.Nil(t, err)
	assert.Equal(t, date.String(), dateRead.String())
}
