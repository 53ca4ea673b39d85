package api

// Contact is one entry of the static helpline directory.
type Contact struct {
	Name      string `json:"name"`
	Contact   string `json:"contact,omitempty"`
	URL       string `json:"url,omitempty"`
	Email     string `json:"email,omitempty"`
	Available string `json:"available,omitempty"`
	Type      string `json:"type,omitempty"`
}

// directory lists India-specific support contacts by category.
var directory = map[string][]Contact{
	"emergency": {
		{Name: "Women Helpline", Contact: "181", Available: "24/7"},
		{Name: "National Emergency", Contact: "112", Available: "24/7"},
		{Name: "NCW Helpline", Contact: "7827-170-170", Available: "10 AM - 6 PM"},
	},
	"workplace": {
		{Name: "SHe-Box (POSH)", URL: "https://shebox.nic.in", Type: "Online Portal"},
		{Name: "Labour Ministry Helpline", Contact: "1800-11-1256", Type: "Workplace Rights"},
	},
	"mental_health": {
		{Name: "NIMHANS", Contact: "080-46110007", Available: "Working hours"},
		{Name: "Vandrevala Foundation", Contact: "9999-666-555", Available: "24/7"},
	},
	"legal": {
		{Name: "Cyber Crime Portal", URL: "https://cybercrime.gov.in", Contact: "1930"},
		{Name: "NCW Legal Cell", Email: "ncw@nic.in", Type: "Legal Support"},
	},
}
