package utils

// Server-side strings for notifications and fixed API messages. Keys match
// the notification keys emitted by the services.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":              "ok",
		"api.banner":             "SheHuMaan API - Supporting Women in IT",
		"submit.success":         "Assessment complete! Generating your personalized plan...",
		"result.missing":         "No assessment found. Please complete the questionnaire first.",
		"copy.success":           "Email copied to clipboard!",
		"error.validation":       "Please fill in all required fields",
		"error.transport":        "Failed to complete assessment. Please try again.",
		"error.in_progress":      "Your assessment is already being analyzed.",
		"error.malformed_result": "Failed to complete assessment. Please try again.",
		"error.storage":          "Could not save your results. Please try again.",
		"error.missing_result":   "No assessment found. Please complete the questionnaire first.",
		"error.invalid":          "Invalid request.",
		"error.not_found":        "Not found.",
		"error.unauthorized":     "Your session has expired. Please start again.",
	},
	"hi": {
		"health.ok":              "ठीक है",
		"api.banner":             "SheHuMaan API - आईटी में महिलाओं का साथ",
		"submit.success":         "मूल्यांकन पूरा हुआ! आपकी व्यक्तिगत योजना तैयार की जा रही है...",
		"result.missing":         "कोई मूल्यांकन नहीं मिला। कृपया पहले प्रश्नावली पूरी करें।",
		"copy.success":           "ईमेल क्लिपबोर्ड पर कॉपी हो गया!",
		"error.validation":       "कृपया सभी आवश्यक फ़ील्ड भरें",
		"error.transport":        "मूल्यांकन पूरा नहीं हो सका। कृपया फिर से प्रयास करें।",
		"error.in_progress":      "आपके मूल्यांकन का विश्लेषण पहले से चल रहा है।",
		"error.malformed_result": "मूल्यांकन पूरा नहीं हो सका। कृपया फिर से प्रयास करें।",
		"error.storage":          "आपके परिणाम सहेजे नहीं जा सके। कृपया फिर से प्रयास करें।",
		"error.missing_result":   "कोई मूल्यांकन नहीं मिला। कृपया पहले प्रश्नावली पूरी करें।",
		"error.invalid":          "अमान्य अनुरोध।",
		"error.not_found":        "नहीं मिला।",
		"error.unauthorized":     "आपका सत्र समाप्त हो गया है। कृपया फिर से शुरू करें।",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}
