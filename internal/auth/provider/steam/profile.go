package steam

import (
	"strconv"
	"time"

	"steam-auth-service/internal/auth"
)

// VisibilityPublic is the communityvisibilitystate of a public profile.
const VisibilityPublic = 3

// Profile is a player summary as returned by ISteamUser/GetPlayerSummaries.
type Profile struct {
	SteamID                  string `json:"steamid"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	ProfileState             int    `json:"profilestate"`
	PersonaName              string `json:"personaname"`
	ProfileURL               string `json:"profileurl"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	AvatarHash               string `json:"avatarhash"`
	LastLogoff               int64  `json:"lastlogoff"`
	PersonaState             int    `json:"personastate"`
	RealName                 string `json:"realname"`
	PrimaryClanID            string `json:"primaryclanid"`
	TimeCreated              int64  `json:"timecreated"`
	PersonaStateFlags        int    `json:"personastateflags"`
	CountryCode              string `json:"loccountrycode,omitempty"`
}

// Public reports whether the profile details are visible to everyone.
func (p *Profile) Public() bool {
	return p.CommunityVisibilityState == VisibilityPublic
}

// CreatedAt is zero for private profiles, which do not expose timecreated.
func (p *Profile) CreatedAt() time.Time {
	if p.TimeCreated == 0 {
		return time.Time{}
	}
	return time.Unix(p.TimeCreated, 0).UTC()
}

// Identity normalizes the profile for the identity resolver.
func (p *Profile) Identity() *auth.Identity {
	return &auth.Identity{
		Provider:       Name,
		ProviderUserID: p.SteamID,
		DisplayName:    p.PersonaName,
		AvatarURL:      p.AvatarFull,
		ProfileURL:     p.ProfileURL,
	}
}

// AccountID returns the 32-bit account number embedded in a 64-bit Steam ID.
func (p *Profile) AccountID() (uint32, error) {
	id, err := strconv.ParseUint(p.SteamID, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint32(id & 0xFFFFFFFF), nil
}
