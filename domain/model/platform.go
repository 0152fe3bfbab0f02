package model

import (
	"fmt"
	"strings"
)

// Platform is the closed set of publishing targets. Unknown platform strings
// are rejected at the boundary via ParsePlatform.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// Tier is a user's subscription tier, ordered free < premium < pro.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

var tierRank = map[Tier]int{
	TierFree:    0,
	TierPremium: 1,
	TierPro:     2,
}

// PlatformCapability describes the static requirements of one platform.
type PlatformCapability struct {
	Platform        Platform
	MinimumTier     Tier
	SupportsRefresh bool // whether the platform issues usable refresh tokens
}

// PlatformCapabilities is the static capability table. Gating decisions are
// made against this table server-side; client-side filtering is advisory only.
var PlatformCapabilities = map[Platform]PlatformCapability{
	PlatformYouTube:   {Platform: PlatformYouTube, MinimumTier: TierFree, SupportsRefresh: true},
	PlatformTikTok:    {Platform: PlatformTikTok, MinimumTier: TierPremium, SupportsRefresh: false},
	PlatformInstagram: {Platform: PlatformInstagram, MinimumTier: TierPremium, SupportsRefresh: false},
	PlatformFacebook:  {Platform: PlatformFacebook, MinimumTier: TierPro, SupportsRefresh: false},
}

// ParsePlatform normalizes and validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := PlatformCapabilities[p]; !ok {
		return "", fmt.Errorf("unknown platform: %q", s)
	}
	return p, nil
}

// ParsePlatforms validates a platform list, deduplicating while preserving
// first-seen order.
func ParsePlatforms(names []string) ([]Platform, error) {
	seen := make(map[Platform]struct{}, len(names))
	out := make([]Platform, 0, len(names))
	for _, n := range names {
		p, err := ParsePlatform(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// CanAccess reports whether a tier may publish to a platform. Pure function
// over the static capability table.
func CanAccess(tier Tier, platform Platform) bool {
	cap, ok := PlatformCapabilities[platform]
	if !ok {
		return false
	}
	return tierRank[tier] >= tierRank[cap.MinimumTier]
}

// ValidTier reports whether s is a known subscription tier.
func ValidTier(s Tier) bool {
	_, ok := tierRank[s]
	return ok
}
