package evaluator

import "regexp"

// hydroKeywords is the hydrology vocabulary used for relevance
// scoring. Keyword coverage is the fraction of this set that appears
// in the text.
var hydroKeywords = []string{
	"水文", "气象", "降雨", "降水", "径流", "蒸发", "渗透", "地下水", "地表水",
	"水位", "流量", "流速", "含沙量", "溶解氧", "水质", "水量", "水环境", "水生态",

	"流域", "水系", "河流", "河道", "河床", "河岸", "河口", "三角洲", "湖泊", "水库",
	"长江", "黄河", "珠江", "淮河", "海河", "松花江", "辽河",

	"大坝", "水坝", "堤坝", "水闸", "堤防", "泵站", "水电站", "拦河坝",
	"防洪", "排涝", "灌溉", "供水", "排水", "调水", "引水",

	"洪水", "枯水", "丰水", "平水", "汛期", "枯水期", "丰水期", "干旱", "洪涝",
	"暴雨", "特大暴雨", "连续降雨", "梅雨", "台风",

	"水文站", "雨量站", "水位站", "监测", "预报", "预警", "调度", "管理", "规划",
	"设计", "施工", "运行", "维护", "治理", "保护", "修复", "生态",
}

// domainPatterns are the sub-domain signals for relevance scoring;
// each matching pattern contributes a quarter of the domain score.
var domainPatterns = map[string]*regexp.Regexp{
	"水文": regexp.MustCompile(`水文|降雨|径流|蒸发|水位|流量`),
	"工程": regexp.MustCompile(`大坝|堤防|水闸|泵站|水库|工程`),
	"管理": regexp.MustCompile(`管理|调度|运行|维护|监测|预报`),
	"环境": regexp.MustCompile(`水质|水环境|生态|污染|保护|治理`),
}

// topicKeywords drive the topic component of diversity scoring.
var topicKeywords = map[string][]string{
	"数据": {"数据", "数值", "统计", "测量", "监测"},
	"技术": {"技术", "方法", "工艺", "方案", "措施"},
	"管理": {"管理", "制度", "政策", "规划", "调度"},
	"工程": {"工程", "建设", "施工", "设计", "维护"},
	"环境": {"环境", "生态", "保护", "治理", "修复"},
}

// synonymPairs map canonical terms to synonyms that count as
// inconsistent usage when both appear.
var synonymPairs = map[string][]string{
	"降雨": {"降水"},
	"径流": {"水流"},
	"大坝": {"水坝", "堤坝"},
}

var (
	explanatoryWords = []string{"因为", "所以", "由于", "因此", "原因", "原理"}
	applicationWords = []string{"应用", "使用", "方法", "措施", "技术"}
	causalWords      = []string{"因为", "所以", "由于", "因此"}
	logicalWords     = []string{"首先", "其次", "最后", "另外"}
)
