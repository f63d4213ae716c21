package sqldb

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// TimestampLayout is the fixed-width UTC text form stored in DATETIME columns.
// Fixed width keeps lexical and chronological order identical.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// Timestamp reads DATETIME columns whether the driver yields time.Time or text.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("sqldb: cannot scan %T into Timestamp", src)
	}
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC().Format(TimestampLayout), nil
}

func (t *Timestamp) parse(value string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqldb: unrecognised timestamp %q", value)
}

type TmEntry struct {
	ID             string
	OwnerID        string
	OrganizationID string
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TranslatedText string
	SourceHash     string
	SourceLength   int64
	Context        sql.NullString
	UseCount       int64
	CreatedAt      Timestamp
	UpdatedAt      Timestamp
}
