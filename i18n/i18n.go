// Package i18n translates the proptrans command-line interface itself.
//
// Catalogs are gettext .po files embedded under
// locales/{lang}/LC_MESSAGES/proptrans.po and read with gotext. Messages
// without a translation are returned unchanged, so English needs no catalog.
//
//	i18n.Init("")                       // PROPTRANS_LANG, then the gettext variables
//	fmt.Println(i18n.T("Created %s"))
//	fmt.Println(i18n.Nf("%d entry left untranslated", "%d entries left untranslated", n))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "proptrans"

// LangEnv selects the interface language ahead of the locale variables.
const LangEnv = "PROPTRANS_LANG"

// fallbackLang is used when no variable names a usable locale.
const fallbackLang = "en"

var (
	po   *gotext.Locale
	lang = fallbackLang
)

// Init loads the catalog for code, or for the detected locale when code
// is empty. It is called once from main before any message is printed.
func Init(code string) {
	if code == "" {
		code = detectLanguage()
	}
	lang = code

	po = gotext.NewLocaleFSWithPath(code, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the locale selected by Init.
func Language() string {
	return lang
}

// T returns the translation of msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N returns the plural form of a message for n, using the catalog's
// Plural-Forms rule. Without a catalog it falls back to English rules.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// Nf selects the plural form for n and formats it with n.
func Nf(singular, plural string, n int) string {
	return fmt.Sprintf(N(singular, plural, n), n)
}

// detectLanguage returns the first usable locale from the environment.
// The gettext order is LANGUAGE, LC_ALL, LC_MESSAGES, LANG.
func detectLanguage() string {
	for _, env := range []string{LangEnv, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if code := trimLocale(val); code != "" {
			return code
		}
	}
	return fallbackLang
}

// trimLocale strips the codeset and modifier ("ru_RU.UTF-8@euro" -> "ru_RU").
// The C and POSIX locales yield "".
func trimLocale(val string) string {
	if i := strings.IndexAny(val, ".@"); i >= 0 {
		val = val[:i]
	}
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}
