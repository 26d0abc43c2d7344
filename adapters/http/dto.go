package http

import (
	"time"

	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/internal/domain/item"
	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
)

// Profile DTOs

type OccupationDTO struct {
	Kind string `json:"kind" binding:"required,oneof=student student_school student_college professional"`

	SchoolName   string `json:"school_name,omitempty"`
	ClassName    string `json:"class_name,omitempty"`
	Section      string `json:"section,omitempty"`
	ClassRollNo  string `json:"class_roll_no,omitempty"`
	ParentsPhone string `json:"parents_phone,omitempty"`

	CollegeName      string `json:"college_name,omitempty"`
	UniversityRollNo string `json:"university_roll_no,omitempty"`
	Branch           string `json:"branch,omitempty"`

	CompanyName string `json:"company_name,omitempty"`
	Locality    string `json:"locality,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
}

func (d *OccupationDTO) ToDomain() (identity.Occupation, error) {
	switch d.Kind {
	case "student":
		return identity.Student{}, nil
	case "student_school":
		return identity.SchoolStudent{
			SchoolName:   d.SchoolName,
			ClassName:    d.ClassName,
			Section:      d.Section,
			ClassRollNo:  d.ClassRollNo,
			ParentsPhone: d.ParentsPhone,
		}, nil
	case "student_college":
		return identity.CollegeStudent{
			CollegeName:      d.CollegeName,
			UniversityRollNo: d.UniversityRollNo,
			Branch:           d.Branch,
			Section:          d.Section,
			ClassRollNo:      d.ClassRollNo,
		}, nil
	case "professional":
		return identity.Professional{
			CompanyName: d.CompanyName,
			Locality:    d.Locality,
			EmployeeID:  d.EmployeeID,
		}, nil
	default:
		return nil, apperror.NewInvalidInput("unknown occupation kind", nil)
	}
}

func ToOccupationDTO(o identity.Occupation) OccupationDTO {
	switch v := o.(type) {
	case identity.SchoolStudent:
		return OccupationDTO{
			Kind:         "student_school",
			SchoolName:   v.SchoolName,
			ClassName:    v.ClassName,
			Section:      v.Section,
			ClassRollNo:  v.ClassRollNo,
			ParentsPhone: v.ParentsPhone,
		}
	case identity.CollegeStudent:
		return OccupationDTO{
			Kind:             "student_college",
			CollegeName:      v.CollegeName,
			UniversityRollNo: v.UniversityRollNo,
			Branch:           v.Branch,
			Section:          v.Section,
			ClassRollNo:      v.ClassRollNo,
		}
	case identity.Professional:
		return OccupationDTO{
			Kind:        "professional",
			CompanyName: v.CompanyName,
			Locality:    v.Locality,
			EmployeeID:  v.EmployeeID,
		}
	default:
		return OccupationDTO{Kind: "student"}
	}
}

type ProfileDTO struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	DateOfBirth string        `json:"dob"`
	Gender      string        `json:"gender"`
	PhoneNumber string        `json:"phone_number"`
	PictureRef  *string       `json:"picture_ref,omitempty"`
	Occupation  OccupationDTO `json:"occupation"`
	Complete    bool          `json:"complete"`
}

func ToProfileDTO(p *identity.UserProfile) ProfileDTO {
	return ProfileDTO{
		ID:          p.ID.String(),
		Email:       p.Email,
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth,
		Gender:      string(p.Gender),
		PhoneNumber: p.PhoneNumber,
		PictureRef:  p.PictureRef,
		Occupation:  ToOccupationDTO(p.Occupation),
		Complete:    p.Complete(),
	}
}

type UpdateProfileRequest struct {
	Name        *string        `json:"name"`
	DateOfBirth *string        `json:"dob"`
	Gender      *string        `json:"gender" binding:"omitempty,oneof=male female transgender"`
	PhoneNumber *string        `json:"phone_number"`
	Occupation  *OccupationDTO `json:"occupation"`
}

func (req *UpdateProfileRequest) ToPatch() (identity.Patch, error) {
	patch := identity.Patch{
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Gender != nil {
		g := identity.Gender(*req.Gender)
		patch.Gender = &g
	}
	if req.Occupation != nil {
		occ, err := req.Occupation.ToDomain()
		if err != nil {
			return identity.Patch{}, err
		}
		patch.Occupation = occ
	}
	return patch, nil
}

// Settings DTOs

type AutoLogoutDTO struct {
	Minutes *int `json:"minutes"`
}

type UpdateSettingsRequest struct {
	Language       *string        `json:"language"`
	ThemeMode      *string        `json:"theme_mode" binding:"omitempty,oneof=light dark system"`
	FontSize       *string        `json:"font_size" binding:"omitempty,oneof=small medium large"`
	Density        *string        `json:"density" binding:"omitempty,oneof=comfortable compact"`
	BorderRadius   *string        `json:"border_radius" binding:"omitempty,oneof=none small medium large"`
	AutoLogout     *AutoLogoutDTO `json:"auto_logout"`
	AllowCookies   *bool          `json:"allow_cookies"`
	AllowAnalytics *bool          `json:"allow_analytics"`
	AllowMarketing *bool          `json:"allow_marketing"`
}

func (req *UpdateSettingsRequest) ToPatch() settings.Patch {
	patch := settings.Patch{
		Language:       req.Language,
		AllowCookies:   req.AllowCookies,
		AllowAnalytics: req.AllowAnalytics,
		AllowMarketing: req.AllowMarketing,
	}
	if req.ThemeMode != nil {
		v := settings.ThemeMode(*req.ThemeMode)
		patch.ThemeMode = &v
	}
	if req.FontSize != nil {
		v := settings.FontSize(*req.FontSize)
		patch.FontSize = &v
	}
	if req.Density != nil {
		v := settings.Density(*req.Density)
		patch.Density = &v
	}
	if req.BorderRadius != nil {
		v := settings.BorderRadius(*req.BorderRadius)
		patch.BorderRadius = &v
	}
	if req.AutoLogout != nil {
		patch.AutoLogout = &settings.AutoLogout{Minutes: req.AutoLogout.Minutes}
	}
	return patch
}

// Item DTOs

type LostItemDTO struct {
	ID               string `json:"id"`
	CreatedBy        string `json:"created_by"`
	ImageURL         string `json:"image_url"`
	Category         string `json:"category"`
	LostDate         string `json:"lost_date"`
	Description      string `json:"description"`
	PhoneNumber      string `json:"phone_number"`
	Organization     string `json:"organization"`
	OrganizationType string `json:"organization_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToLostItemDTO(it item.LostItem) LostItemDTO {
	return LostItemDTO{
		ID:               it.ID.String(),
		CreatedBy:        it.CreatedBy.String(),
		ImageURL:         it.ImageURL,
		Category:         it.Category,
		LostDate:         it.LostDate,
		Description:      it.Description,
		PhoneNumber:      it.PhoneNumber,
		Organization:     it.Organization,
		OrganizationType: string(it.OrganizationType),
		CreatedAt:        it.CreatedAt,
	}
}

type FoundItemDTO struct {
	ID               string    `json:"id"`
	CreatedBy        string    `json:"created_by"`
	ImageURL         string    `json:"image_url"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	Organization     string    `json:"organization"`
	OrganizationType string    `json:"organization_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToFoundItemDTO(it item.FoundItem) FoundItemDTO {
	return FoundItemDTO{
		ID:               it.ID.String(),
		CreatedBy:        it.CreatedBy.String(),
		ImageURL:         it.ImageURL,
		Location:         it.Location,
		Description:      it.Description,
		Organization:     it.Organization,
		OrganizationType: string(it.OrganizationType),
		CreatedAt:        it.CreatedAt,
	}
}
