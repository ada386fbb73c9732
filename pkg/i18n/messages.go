package i18n

// DefaultMessages returns built-in translations for all supported locales.
// These can be overridden by loading JSON files from a directory.
func DefaultMessages() map[Locale]map[string]string {
	return map[Locale]map[string]string{
		LocaleZh: zhMessages,
		LocaleEn: enMessages,
	}
}

var zhMessages = map[string]string{
	"post.reading_time": "%d 分钟阅读",

	"feed.description": "个人博客",

	"rate_limit.exceeded": "请求过于频繁，请 %d 秒后重试",
}

var enMessages = map[string]string{
	"post.reading_time": "%d min read",

	"feed.description": "Personal blog",

	"rate_limit.exceeded": "Too many requests. Please retry after %d seconds",
}
