// pkg/model/field.go
package model

import "strings"

// Field identifies a canonical connection attribute. Name is the column
// header used by the LinkedIn export, Key is the storage column name.
type Field struct {
	Name string
	Key  string
}

var (
	FieldFirstName    = Field{Name: "First Name", Key: "first_name"}
	FieldLastName     = Field{Name: "Last Name", Key: "last_name"}
	FieldURL          = Field{Name: "URL", Key: "url"}
	FieldEmailAddress = Field{Name: "Email Address", Key: "email_address"}
	FieldCompany      = Field{Name: "Company", Key: "company"}
	FieldPosition     = Field{Name: "Position", Key: "position"}
	FieldConnectedOn  = Field{Name: "Connected On", Key: "connected_on"}
	FieldLocation     = Field{Name: "Location", Key: "location"}
)

// CanonicalFields is the fixed list of import fields, in mapping order.
var CanonicalFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldURL,
	FieldEmailAddress,
	FieldCompany,
	FieldPosition,
	FieldConnectedOn,
}

// TextFields are the string-valued fields that can be filtered and sorted.
var TextFields = append(append([]Field{}, CanonicalFields...), FieldLocation)

// RequiredFields must be mapped before an import can be committed.
var RequiredFields = []Field{FieldFirstName, FieldLastName}

// LookupField resolves a field by display name or storage key,
// case-insensitively.
func LookupField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Field{}, false
	}
	for _, f := range TextFields {
		if strings.EqualFold(f.Name, name) || strings.EqualFold(f.Key, name) {
			return f, true
		}
	}
	return Field{}, false
}

// IsRequired reports whether the field is part of the admission invariant.
func (f Field) IsRequired() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

func (f Field) String() string {
	return f.Name
}
