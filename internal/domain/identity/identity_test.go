package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	cases := []struct {
		name    string
		profile *UserProfile
		want    bool
	}{
		{"nil profile", nil, false},
		{"zero id", &UserProfile{Name: "A", DateOfBirth: "2000-01-01", PhoneNumber: "123"}, false},
		{"missing name", &UserProfile{ID: uuid.New(), DateOfBirth: "2000-01-01", PhoneNumber: "123"}, false},
		{"missing dob", &UserProfile{ID: uuid.New(), Name: "A", PhoneNumber: "123"}, false},
		{"missing phone", &UserProfile{ID: uuid.New(), Name: "A", DateOfBirth: "2000-01-01"}, false},
		{"complete", &UserProfile{ID: uuid.New(), Name: "A", DateOfBirth: "2000-01-01", PhoneNumber: "123"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.profile.Complete())
		})
	}
}

func TestApply_MergesAndPreservesReceiver(t *testing.T) {
	base := UserProfile{
		ID:         uuid.New(),
		Email:      "a@example.com",
		Gender:     GenderMale,
		Occupation: Student{},
	}
	name := "Asha"
	gender := GenderFemale

	next := base.Apply(Patch{
		Name:       &name,
		Gender:     &gender,
		Occupation: SchoolStudent{SchoolName: "DPS"},
	})

	assert.Equal(t, "Asha", next.Name)
	assert.Equal(t, GenderFemale, next.Gender)
	assert.Equal(t, SchoolStudent{SchoolName: "DPS"}, next.Occupation)
	assert.Equal(t, "a@example.com", next.Email)

	assert.Empty(t, base.Name)
	assert.Equal(t, GenderMale, base.Gender)
}

func TestOccupationRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		occ  Occupation
	}{
		{"bare student", Student{}},
		{"school student", SchoolStudent{SchoolName: "DPS", ClassName: "10", Section: "B", ClassRollNo: "17", ParentsPhone: "9999"}},
		{"college student", CollegeStudent{CollegeName: "IIT", UniversityRollNo: "U-42", Branch: "CSE", Section: "A", ClassRollNo: "3"}},
		{"professional", Professional{CompanyName: "Acme", Locality: "Pune", EmployeeID: "E-9"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := MarshalOccupation(tc.occ)
			assert.NoError(t, err)

			got, err := UnmarshalOccupation(data)
			assert.NoError(t, err)
			assert.Equal(t, tc.occ, got)
		})
	}
}

func TestUnmarshalOccupation_EmptyAndUnknown(t *testing.T) {
	got, err := UnmarshalOccupation(nil)
	assert.NoError(t, err)
	assert.Equal(t, Student{}, got)

	_, err = UnmarshalOccupation([]byte(`{"kind":"astronaut"}`))
	assert.Error(t, err)
}

func TestMarshalOccupation_NilDefaultsToStudent(t *testing.T) {
	data, err := MarshalOccupation(nil)
	assert.NoError(t, err)

	got, err := UnmarshalOccupation(data)
	assert.NoError(t, err)
	assert.Equal(t, Student{}, got)
}

func TestOrganization(t *testing.T) {
	assert.Equal(t, "DPS", Organization(SchoolStudent{SchoolName: "DPS"}))
	assert.Equal(t, "IIT", Organization(CollegeStudent{CollegeName: "IIT"}))
	assert.Equal(t, "Acme", Organization(Professional{CompanyName: "Acme"}))
	assert.Equal(t, "", Organization(Student{}))
}
