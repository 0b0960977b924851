// Package langmeta provides the language registry: the set of target
// languages the translation backend accepts, with English and native names
// and emoji flags used in prompts and CLI output.
package langmeta

import (
	"sort"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the English name, used in LLM prompts.
	Name string
	// Native is the name in the language itself, used in CLI output.
	Native string
	Flag   string
}

// Registry holds every supported target language, keyed by its base code.
// The set matches the language coverage of the m2m100 translation model.
var Registry = map[string]Meta{
	"af":  {Name: "Afrikaans", Native: "Afrikaans", Flag: "🇿🇦"},
	"am":  {Name: "Amharic", Native: "አማርኛ", Flag: "🇪🇹"},
	"ar":  {Name: "Arabic", Native: "العربية", Flag: "🇸🇦"},
	"ast": {Name: "Asturian", Native: "Asturianu", Flag: "🇪🇸"},
	"az":  {Name: "Azerbaijani", Native: "Azərbaycanca", Flag: "🇦🇿"},
	"ba":  {Name: "Bashkir", Native: "Башҡорт теле", Flag: "🇷🇺"},
	"be":  {Name: "Belarusian", Native: "Беларуская", Flag: "🇧🇾"},
	"bg":  {Name: "Bulgarian", Native: "Български", Flag: "🇧🇬"},
	"bn":  {Name: "Bengali", Native: "বাংলা", Flag: "🇧🇩"},
	"br":  {Name: "Breton", Native: "Brezhoneg", Flag: "🇫🇷"},
	"bs":  {Name: "Bosnian", Native: "Bosanski", Flag: "🇧🇦"},
	"ca":  {Name: "Catalan", Native: "Català", Flag: "🇪🇸"},
	"ceb": {Name: "Cebuano", Native: "Cebuano", Flag: "🇵🇭"},
	"cs":  {Name: "Czech", Native: "Čeština", Flag: "🇨🇿"},
	"cy":  {Name: "Welsh", Native: "Cymraeg", Flag: "🇬🇧"},
	"da":  {Name: "Danish", Native: "Dansk", Flag: "🇩🇰"},
	"de":  {Name: "German", Native: "Deutsch", Flag: "🇩🇪"},
	"el":  {Name: "Greek", Native: "Ελληνικά", Flag: "🇬🇷"},
	"en":  {Name: "English", Native: "English", Flag: "🇺🇸"},
	"es":  {Name: "Spanish", Native: "Español", Flag: "🇪🇸"},
	"et":  {Name: "Estonian", Native: "Eesti", Flag: "🇪🇪"},
	"fa":  {Name: "Persian", Native: "فارسی", Flag: "🇮🇷"},
	"ff":  {Name: "Fulah", Native: "Fulfulde", Flag: "🇸🇳"},
	"fi":  {Name: "Finnish", Native: "Suomi", Flag: "🇫🇮"},
	"fr":  {Name: "French", Native: "Français", Flag: "🇫🇷"},
	"fy":  {Name: "Western Frisian", Native: "Frysk", Flag: "🇳🇱"},
	"ga":  {Name: "Irish", Native: "Gaeilge", Flag: "🇮🇪"},
	"gd":  {Name: "Scottish Gaelic", Native: "Gàidhlig", Flag: "🇬🇧"},
	"gl":  {Name: "Galician", Native: "Galego", Flag: "🇪🇸"},
	"gu":  {Name: "Gujarati", Native: "ગુજરાતી", Flag: "🇮🇳"},
	"ha":  {Name: "Hausa", Native: "Hausa", Flag: "🇳🇬"},
	"he":  {Name: "Hebrew", Native: "עברית", Flag: "🇮🇱"},
	"hi":  {Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳"},
	"hr":  {Name: "Croatian", Native: "Hrvatski", Flag: "🇭🇷"},
	"ht":  {Name: "Haitian Creole", Native: "Kreyòl ayisyen", Flag: "🇭🇹"},
	"hu":  {Name: "Hungarian", Native: "Magyar", Flag: "🇭🇺"},
	"hy":  {Name: "Armenian", Native: "Հայերեն", Flag: "🇦🇲"},
	"id":  {Name: "Indonesian", Native: "Bahasa Indonesia", Flag: "🇮🇩"},
	"ig":  {Name: "Igbo", Native: "Asụsụ Igbo", Flag: "🇳🇬"},
	"ilo": {Name: "Iloko", Native: "Ilokano", Flag: "🇵🇭"},
	"is":  {Name: "Icelandic", Native: "Íslenska", Flag: "🇮🇸"},
	"it":  {Name: "Italian", Native: "Italiano", Flag: "🇮🇹"},
	"ja":  {Name: "Japanese", Native: "日本語", Flag: "🇯🇵"},
	"jv":  {Name: "Javanese", Native: "Basa Jawa", Flag: "🇮🇩"},
	"ka":  {Name: "Georgian", Native: "ქართული", Flag: "🇬🇪"},
	"kk":  {Name: "Kazakh", Native: "Қазақ тілі", Flag: "🇰🇿"},
	"km":  {Name: "Khmer", Native: "ខ្មែរ", Flag: "🇰🇭"},
	"kn":  {Name: "Kannada", Native: "ಕನ್ನಡ", Flag: "🇮🇳"},
	"ko":  {Name: "Korean", Native: "한국어", Flag: "🇰🇷"},
	"lb":  {Name: "Luxembourgish", Native: "Lëtzebuergesch", Flag: "🇱🇺"},
	"lg":  {Name: "Ganda", Native: "Luganda", Flag: "🇺🇬"},
	"ln":  {Name: "Lingala", Native: "Lingála", Flag: "🇨🇩"},
	"lo":  {Name: "Lao", Native: "ລາວ", Flag: "🇱🇦"},
	"lt":  {Name: "Lithuanian", Native: "Lietuvių", Flag: "🇱🇹"},
	"lv":  {Name: "Latvian", Native: "Latviešu", Flag: "🇱🇻"},
	"mg":  {Name: "Malagasy", Native: "Malagasy", Flag: "🇲🇬"},
	"mk":  {Name: "Macedonian", Native: "Македонски", Flag: "🇲🇰"},
	"ml":  {Name: "Malayalam", Native: "മലയാളം", Flag: "🇮🇳"},
	"mn":  {Name: "Mongolian", Native: "Монгол", Flag: "🇲🇳"},
	"mr":  {Name: "Marathi", Native: "मराठी", Flag: "🇮🇳"},
	"ms":  {Name: "Malay", Native: "Bahasa Melayu", Flag: "🇲🇾"},
	"my":  {Name: "Burmese", Native: "မြန်မာ", Flag: "🇲🇲"},
	"ne":  {Name: "Nepali", Native: "नेपाली", Flag: "🇳🇵"},
	"nl":  {Name: "Dutch", Native: "Nederlands", Flag: "🇳🇱"},
	"no":  {Name: "Norwegian", Native: "Norsk", Flag: "🇳🇴"},
	"ns":  {Name: "Northern Sotho", Native: "Sesotho sa Leboa", Flag: "🇿🇦"},
	"oc":  {Name: "Occitan", Native: "Occitan", Flag: "🇫🇷"},
	"or":  {Name: "Oriya", Native: "ଓଡ଼ିଆ", Flag: "🇮🇳"},
	"pa":  {Name: "Punjabi", Native: "ਪੰਜਾਬੀ", Flag: "🇮🇳"},
	"pl":  {Name: "Polish", Native: "Polski", Flag: "🇵🇱"},
	"ps":  {Name: "Pashto", Native: "پښتو", Flag: "🇦🇫"},
	"pt":  {Name: "Portuguese", Native: "Português", Flag: "🇵🇹"},
	"ro":  {Name: "Romanian", Native: "Română", Flag: "🇷🇴"},
	"ru":  {Name: "Russian", Native: "Русский", Flag: "🇷🇺"},
	"sd":  {Name: "Sindhi", Native: "سنڌي", Flag: "🇵🇰"},
	"si":  {Name: "Sinhala", Native: "සිංහල", Flag: "🇱🇰"},
	"sk":  {Name: "Slovak", Native: "Slovenčina", Flag: "🇸🇰"},
	"sl":  {Name: "Slovenian", Native: "Slovenščina", Flag: "🇸🇮"},
	"so":  {Name: "Somali", Native: "Soomaali", Flag: "🇸🇴"},
	"sq":  {Name: "Albanian", Native: "Shqip", Flag: "🇦🇱"},
	"sr":  {Name: "Serbian", Native: "Српски", Flag: "🇷🇸"},
	"ss":  {Name: "Swati", Native: "SiSwati", Flag: "🇸🇿"},
	"su":  {Name: "Sundanese", Native: "Basa Sunda", Flag: "🇮🇩"},
	"sv":  {Name: "Swedish", Native: "Svenska", Flag: "🇸🇪"},
	"sw":  {Name: "Swahili", Native: "Kiswahili", Flag: "🇹🇿"},
	"ta":  {Name: "Tamil", Native: "தமிழ்", Flag: "🇮🇳"},
	"th":  {Name: "Thai", Native: "ไทย", Flag: "🇹🇭"},
	"tl":  {Name: "Tagalog", Native: "Tagalog", Flag: "🇵🇭"},
	"tn":  {Name: "Tswana", Native: "Setswana", Flag: "🇧🇼"},
	"tr":  {Name: "Turkish", Native: "Türkçe", Flag: "🇹🇷"},
	"uk":  {Name: "Ukrainian", Native: "Українська", Flag: "🇺🇦"},
	"ur":  {Name: "Urdu", Native: "اردو", Flag: "🇵🇰"},
	"uz":  {Name: "Uzbek", Native: "O'zbek", Flag: "🇺🇿"},
	"vi":  {Name: "Vietnamese", Native: "Tiếng Việt", Flag: "🇻🇳"},
	"wo":  {Name: "Wolof", Native: "Wolof", Flag: "🇸🇳"},
	"xh":  {Name: "Xhosa", Native: "isiXhosa", Flag: "🇿🇦"},
	"yi":  {Name: "Yiddish", Native: "ייִדיש", Flag: ""},
	"yo":  {Name: "Yoruba", Native: "Yorùbá", Flag: "🇳🇬"},
	"zh":  {Name: "Chinese", Native: "中文", Flag: "🇨🇳"},
	"zu":  {Name: "Zulu", Native: "isiZulu", Flag: "🇿🇦"},
}

// Normalize lower-cases a requested language code and truncates it at the
// first '-', so "PT-br" becomes "pt".
func Normalize(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(code, '-'); i >= 0 {
		code = code[:i]
	}
	return code
}

// IsSupported reports whether code (already normalized) is a supported
// target language.
func IsSupported(code string) bool {
	_, ok := Registry[code]
	return ok
}

// Supported returns all supported language codes in sorted order.
func Supported() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SupportedList returns the supported codes as a comma-separated list.
func SupportedList() string {
	return strings.Join(Supported(), ", ")
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang, Native: lang}
}
