package models

// WorkshopContent is the editable text of the workshop section.
type WorkshopContent struct {
	Title             string `json:"title" yaml:"title" toml:"title"`
	Subtitle          string `json:"subtitle" yaml:"subtitle" toml:"subtitle"`
	PrizeAmount       string `json:"prizeAmount" yaml:"prize_amount" toml:"prize_amount"`
	IsFree            bool   `json:"isFree" yaml:"is_free" toml:"is_free"`
	WhatsappGroupLink string `json:"whatsappGroupLink" yaml:"whatsapp_group_link" toml:"whatsapp_group_link"`
}

// SiteConfig holds mutable display configuration.
type SiteConfig struct {
	BannerURL         string          `json:"bannerUrl"`
	WorkshopBannerURL string          `json:"workshopBannerUrl"`
	Workshop          WorkshopContent `json:"workshop"`
}

// DefaultWorkshop is shown until an admin saves workshop content, and whenever it cannot be fetched.
func DefaultWorkshop() WorkshopContent {
	return WorkshopContent{
		Title:             "7-Day Gen AI & Vibe Coding Workshop",
		Subtitle:          "Master the future of coding with AI. Learn, Build, and Win!",
		PrizeAmount:       "50000",
		IsFree:            true,
		WhatsappGroupLink: "https://chat.whatsapp.com/Eu63xdXtVaj8sFBCyLDfZa",
	}
}
