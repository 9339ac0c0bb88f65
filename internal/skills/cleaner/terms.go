package cleaner

// protectedTerms are hydrology terms kept verbatim during Chinese
// cleaning and seeded into the segmentation dictionary.
var protectedTerms = []string{
	"水文", "气象", "降雨", "径流", "蒸发", "渗透", "地下水", "地表水",
	"水库", "大坝", "堤防", "水闸", "泵站", "灌溉", "排涝", "防洪",
	"水质", "水量", "水位", "流量", "流速", "含沙量", "溶解氧",
	"流域", "水系", "河道", "河床", "河岸", "河口", "三角洲",
	"洪水", "枯水", "丰水", "平水", "汛期", "枯水期", "丰水期",
	"水库调度", "水资源", "水环境", "水生态", "水安全", "水管理",
}

// englishStopWords are function words dropped during English cleaning.
var englishStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"if": {}, "of": {}, "at": {}, "by": {}, "for": {}, "in": {},
	"on": {}, "to": {}, "up": {}, "with": {}, "as": {}, "is": {},
	"it": {}, "its": {}, "be": {}, "been": {}, "was": {}, "were": {},
	"are": {}, "am": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "from": {}, "into": {}, "over": {}, "under": {},
	"then": {}, "than": {}, "so": {}, "such": {}, "not": {}, "no": {},
	"nor": {}, "too": {}, "very": {}, "can": {}, "will": {},
	"just": {}, "should": {}, "now": {},
}
