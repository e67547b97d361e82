package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Every endpoint responds with the same JSON envelope:
// {"success": bool, "data": ..., "error": ..., "count": n}.

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": count})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

func parseUintQuery(value string) (*uint, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", value)
	}
	id := uint(parsed)
	return &id, nil
}

// parseBoolFlag interprets the literal query strings "true"/"false";
// anything else (including absence) means unfiltered.
func parseBoolFlag(value string) *bool {
	switch value {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func parseDateQuery(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return &parsed, nil
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}

// optionalDate distinguishes an absent date field from an explicit JSON null
// in partial updates: UnmarshalJSON only runs when the key is present, and a
// null clears the stored date.
type optionalDate struct {
	set   bool
	value *time.Time
}

// optionalUint does the same for nullable foreign keys: a null detaches the
// reference instead of leaving it unchanged.
type optionalUint struct {
	set   bool
	value *uint
}

func (u *optionalUint) UnmarshalJSON(data []byte) error {
	u.set = true
	if string(data) == "null" {
		u.value = nil
		return nil
	}
	var raw uint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.value = &raw
	return nil
}

func (d *optionalDate) UnmarshalJSON(data []byte) error {
	d.set = true
	if string(data) == "null" {
		d.value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	d.value = &parsed
	return nil
}
