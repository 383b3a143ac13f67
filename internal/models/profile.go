package models

import "time"

// Profile is the public-facing card for a user. One user has exactly one
// profile; Username mirrors the owning user's.
type Profile struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Username           string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	DisplayName        string    `json:"display_name" gorm:"size:255"`
	Bio                string    `json:"bio" gorm:"size:1024"`
	Instagram          string    `json:"instagram" gorm:"size:255"`
	Snapchat           string    `json:"snapchat" gorm:"size:255"`
	LinkedIn           string    `json:"linkedin" gorm:"size:255"`
	Twitter            string    `json:"twitter" gorm:"size:255"`
	TikTok             string    `json:"tiktok" gorm:"size:255"`
	ContactEmail       string    `json:"email" gorm:"column:email;size:255"`
	Website            string    `json:"website" gorm:"size:255"`
	IsProfessionalMode bool      `json:"is_professional_mode" gorm:"default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// ProfileView is the shape returned to anyone viewing a profile.
type ProfileView struct {
	Username           string `json:"username"`
	DisplayName        string `json:"display_name,omitempty"`
	Bio                string `json:"bio,omitempty"`
	Instagram          string `json:"instagram,omitempty"`
	Snapchat           string `json:"snapchat,omitempty"`
	LinkedIn           string `json:"linkedin,omitempty"`
	Twitter            string `json:"twitter,omitempty"`
	TikTok             string `json:"tiktok,omitempty"`
	ContactEmail       string `json:"email,omitempty"`
	Website            string `json:"website,omitempty"`
	IsProfessionalMode bool   `json:"is_professional_mode"`
}

// PublicView projects the profile into its viewer-facing shape. Personal
// social handles are only copied when professional mode is off, so a new
// personal field must be added here explicitly before it can appear in
// responses.
func (p *Profile) PublicView() ProfileView {
	v := ProfileView{
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		LinkedIn:           p.LinkedIn,
		ContactEmail:       p.ContactEmail,
		Website:            p.Website,
		IsProfessionalMode: p.IsProfessionalMode,
	}
	if !p.IsProfessionalMode {
		v.Instagram = p.Instagram
		v.Snapchat = p.Snapchat
		v.Twitter = p.Twitter
		v.TikTok = p.TikTok
	}
	return v
}
