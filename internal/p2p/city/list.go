package city

import "p2pex.com/internal/p2p/domain"

// 内置城市列表，没配置远端源时作为主列表
var staticNames = []string{
	"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Ahmedabad", "Chennai",
	"Kolkata", "Surat", "Pune", "Jaipur", "Lucknow", "Kanpur",
	"Nagpur", "Indore", "Thane", "Bhopal", "Visakhapatnam", "Pimpri-Chinchwad",
	"Patna", "Vadodara", "Ghaziabad", "Ludhiana", "Agra", "Nashik",
	"Faridabad", "Meerut", "Rajkot", "Kalyan-Dombivli", "Vasai-Virar", "Varanasi",
	"Srinagar", "Aurangabad", "Dhanbad", "Amritsar", "Navi Mumbai", "Allahabad",
	"Ranchi", "Howrah", "Coimbatore", "Jabalpur", "Gwalior", "Vijayawada",
	"Jodhpur", "Madurai", "Raipur", "Kota", "Guwahati", "Chandigarh",
	"Solapur", "Hubli-Dharwad", "Tiruchirappalli", "Bareilly", "Mysore", "Tiruppur",
	"Gurgaon", "Aligarh", "Jalandhar", "Bhubaneswar", "Salem", "Mira-Bhayandar",
	"Warangal", "Guntur", "Bhiwandi", "Saharanpur", "Gorakhpur", "Bikaner",
	"Amravati", "Noida", "Jamshedpur", "Bhilai", "Cuttack", "Firozabad",
	"Kochi", "Nellore", "Bhavnagar", "Dehradun", "Durgapur", "Asansol",
	"Rourkela", "Nanded", "Kolhapur", "Ajmer", "Akola", "Gulbarga",
	"Jamnagar", "Ujjain", "Loni", "Siliguri", "Jhansi", "Ulhasnagar",
	"Jammu", "Sangli-Miraj & Kupwad", "Mangalore", "Erode", "Belgaum", "Ambattur",
	"Tirunelveli", "Malegaon", "Gaya", "Jalgaon", "Udaipur", "Maheshtala",
}

// 远端不可用时的兜底列表
var fallbackCities = []domain.CityEntry{
	{Name: "Mumbai", State: "Maharashtra", Country: "India"},
	{Name: "Delhi", State: "Delhi", Country: "India"},
	{Name: "Bangalore", State: "Karnataka", Country: "India"},
	{Name: "Hyderabad", State: "Telangana", Country: "India"},
	{Name: "Chennai", State: "Tamil Nadu", Country: "India"},
	{Name: "Kolkata", State: "West Bengal", Country: "India"},
	{Name: "Pune", State: "Maharashtra", Country: "India"},
	{Name: "Ahmedabad", State: "Gujarat", Country: "India"},
}

// StaticCities 内置列表的拷贝
func StaticCities() []domain.CityEntry {
	out := make([]domain.CityEntry, 0, len(staticNames))
	for _, n := range staticNames {
		out = append(out, domain.CityEntry{Name: n, Country: "India"})
	}
	return out
}

// FallbackCities 兜底列表的拷贝
func FallbackCities() []domain.CityEntry {
	return append([]domain.CityEntry(nil), fallbackCities...)
}
