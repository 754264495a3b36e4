package config

// Typed parameter accessors. Params arrive either from the built-in defaults
// (Go literals) or from a JSON override document, so every numeric may be a
// float64, int, or json.Number-ish value; the helpers normalize that.
//
// Site-specific values live under params["sites"][site] and win over the
// flat parameter of the same name, which in turn wins over the caller's
// default. New clinical sites are therefore supported purely through the
// override document.

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (c *CheckConfig) siteParams(site string) map[string]any {
	sites, ok := c.Params["sites"].(map[string]any)
	if !ok {
		return nil
	}
	sp, _ := sites[site].(map[string]any)
	return sp
}

// Float returns the flat numeric parameter, or def when absent.
func (c *CheckConfig) Float(key string, def float64) float64 {
	if v, ok := asFloat(c.Params[key]); ok {
		return v
	}
	return def
}

// SiteFloat resolves a numeric parameter for a clinical site: site override,
// then flat parameter, then def.
func (c *CheckConfig) SiteFloat(site, key string, def float64) float64 {
	if sp := c.siteParams(site); sp != nil {
		if v, ok := asFloat(sp[key]); ok {
			return v
		}
	}
	return c.Float(key, def)
}

// SiteStrings resolves a string-list parameter for a clinical site with the
// same precedence as SiteFloat. A nil result means the parameter is unset.
func (c *CheckConfig) SiteStrings(site, key string) []string {
	if sp := c.siteParams(site); sp != nil {
		if out := asStrings(sp[key]); out != nil {
			return out
		}
	}
	return asStrings(c.Params[key])
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Text returns a display text with a fallback.
func (c *CheckConfig) Text(key, def string) string {
	if t, ok := c.Texts[key]; ok && t != "" {
		return t
	}
	return def
}

// Label returns the configured result name, falling back to the check key.
func (c *CheckConfig) Label() string {
	if c.ResultName != "" {
		return c.ResultName
	}
	return c.Key
}
