package identity

import (
	"encoding/json"
	"fmt"
)

// Occupation is a closed union: a profile is either a student (at a school
// or a college) or a professional. Invalid field combinations cannot be
// represented.
type Occupation interface {
	occupationKind() string
}

type SchoolStudent struct {
	SchoolName   string `json:"school_name"`
	ClassName    string `json:"class_name"`
	Section      string `json:"section"`
	ClassRollNo  string `json:"class_roll_no"`
	ParentsPhone string `json:"parents_phone"`
}

type CollegeStudent struct {
	CollegeName      string `json:"college_name"`
	UniversityRollNo string `json:"university_roll_no"`
	Branch           string `json:"branch"`
	Section          string `json:"section"`
	ClassRollNo      string `json:"class_roll_no"`
}

type Professional struct {
	CompanyName string `json:"company_name"`
	Locality    string `json:"locality"`
	EmployeeID  string `json:"employee_id"`
}

// Student is the default occupation of a freshly provisioned profile; the
// school/college split is chosen during profile completion.
type Student struct{}

func (Student) occupationKind() string        { return "student" }
func (SchoolStudent) occupationKind() string  { return "student_school" }
func (CollegeStudent) occupationKind() string { return "student_college" }
func (Professional) occupationKind() string   { return "professional" }

// Organization returns the institution name an occupation belongs to, used
// as the scope filter for item listings.
func Organization(o Occupation) string {
	switch v := o.(type) {
	case SchoolStudent:
		return v.SchoolName
	case CollegeStudent:
		return v.CollegeName
	case Professional:
		return v.CompanyName
	default:
		return ""
	}
}

type occupationEnvelope struct {
	Kind   string          `json:"kind"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

// MarshalOccupation encodes the union with an explicit discriminant for
// the JSONB profile column.
func MarshalOccupation(o Occupation) ([]byte, error) {
	if o == nil {
		o = Student{}
	}
	fields, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return json.Marshal(occupationEnvelope{Kind: o.occupationKind(), Fields: fields})
}

func UnmarshalOccupation(data []byte) (Occupation, error) {
	if len(data) == 0 {
		return Student{}, nil
	}
	var env occupationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "", "student":
		return Student{}, nil
	case "student_school":
		var v SchoolStudent
		if err := json.Unmarshal(env.Fields, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "student_college":
		var v CollegeStudent
		if err := json.Unmarshal(env.Fields, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "professional":
		var v Professional
		if err := json.Unmarshal(env.Fields, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown occupation kind %q", env.Kind)
	}
}
