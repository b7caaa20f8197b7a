package domain

// Source 城市列表来源
type Source string

const (
	SourcePrimary  Source = "PRIMARY"
	SourceFallback Source = "FALLBACK"
)

// CityEntry 城市，名字即身份
type CityEntry struct {
	Name        string `json:"name"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	TraderCount int    `json:"trader_count"`
}

// Profile 按钱包地址保存的个人资料
type Profile struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Verified bool   `json:"is_verified"`
}
