package enhancer

import "github.com/BaoyingShan0/OpenHydrology/internal/core/domain"

// hydroTerms maps canonical hydrology terms to their aliases.
var hydroTerms = map[string][]string{
	"水文": {"水文学", "水文分析", "水文资料"},
	"降雨": {"降水", "降雨量", "降水量", "降雨强度"},
	"径流": {"地表径流", "地下径流", "径流量", "径流系数"},
	"蒸发": {"蒸发量", "蒸发能力", "蒸散发"},
	"渗透": {"入渗", "下渗", "渗透率", "渗透系数"},

	"流域":  {"集水区", "汇水区", "流域面积", "分水岭"},
	"河流":  {"河道", "河床", "河岸", "河口"},
	"湖泊":  {"水库", "人工湖", "天然湖", "湖泊水位"},
	"地下水": {"含水层", "地下水位", "地下水补给"},

	"大坝": {"水坝", "堤坝", "重力坝", "拱坝"},
	"水闸": {"节制闸", "泄洪闸", "冲沙闸"},
	"堤防": {"防洪堤", "海堤", "河堤"},
	"泵站": {"抽水站", "排水泵站", "灌溉泵站"},

	"防洪": {"防洪工程", "防洪标准", "洪水预警"},
	"灌溉": {"农田灌溉", "节水灌溉", "灌溉制度"},
	"排涝": {"排水", "除涝", "排水系统"},
	"供水": {"水源地", "供水工程", "水质保障"},

	"水质":   {"水环境", "水污染", "水质监测"},
	"水生态":  {"生态系统", "生物多样性", "生态保护"},
	"水土保持": {"土壤侵蚀", "植被恢复", "综合治理"},
}

// DefaultKnowledgeBase returns the built-in hydrology knowledge base:
// canonical terms with aliases, well-known entities and the
// relationships between them.
func DefaultKnowledgeBase() *domain.KnowledgeBase {
	kb := domain.NewKnowledgeBase()

	for term, aliases := range hydroTerms {
		kb.AddTerm(term, aliases...)
	}

	kb.AddEntity("长江", map[string]any{"type": "河流", "length": "6300km", "basin_area": "180万km²"})
	kb.AddEntity("黄河", map[string]any{"type": "河流", "length": "5464km", "basin_area": "79.5万km²"})
	kb.AddEntity("三峡", map[string]any{"type": "水利工程", "purpose": "防洪、发电、航运"})
	kb.AddEntity("南水北调", map[string]any{"type": "调水工程", "routes": []string{"东线", "中线", "西线"}})

	kb.AddRelationship("长江", "流经", "三峡")
	kb.AddRelationship("三峡", "是", "水利工程")
	kb.AddRelationship("南水北调", "连接", "长江")
	kb.AddRelationship("南水北调", "连接", "黄河")

	return kb
}

// termExplanations are the short inline explanations used during
// knowledge enrichment.
var termExplanations = map[string]string{
	"水文": "研究水的各种现象和规律",
	"降雨": "大气中的水汽凝结后降落到地面的现象",
	"径流": "降水或融雪形成的地表水流",
	"蒸发": "水从液态转变为气态的过程",
	"流域": "分水线所包围的集水区域",
	"防洪": "防止洪水灾害的各种措施",
	"灌溉": "人为补给农田水分的措施",
}

// domainKeywords maps sub-domain tags to the keywords that trigger
// them.
var domainKeywords = map[string][]string{
	"水资源": {"水资源", "水量", "用水", "供水", "节水"},
	"水文学": {"水文", "降雨", "径流", "蒸发", "渗透"},
	"水工程": {"大坝", "水闸", "堤防", "泵站", "水库"},
	"水环境": {"水质", "水环境", "污染", "生态", "保护"},
	"防洪":  {"洪水", "防洪", "防汛", "预警", "调度"},
	"灌溉":  {"灌溉", "农田", "排水", "旱情", "抗旱"},
}

// termDomains maps canonical terms to the sub-domain a QA pair about
// them belongs to. Unknown terms fall back to 综合.
var termDomains = map[string]string{
	"水文": "水文学",
	"降雨": "水文学",
	"径流": "水文学",
	"大坝": "水工程",
	"防洪": "防洪",
	"灌溉": "灌溉",
	"水质": "水环境",
}

func determineDomain(term string) string {
	if d, ok := termDomains[term]; ok {
		return d
	}
	return "综合"
}

// englishHydroTerms is the fixed English term vocabulary.
var englishHydroTerms = map[string]struct{}{
	"hydrology": {}, "water": {}, "river": {}, "dam": {},
	"reservoir": {}, "flood": {}, "drought": {}, "precipitation": {},
	"evaporation": {}, "runoff": {}, "watershed": {}, "groundwater": {},
	"irrigation": {}, "drainage": {}, "ecosystem": {},
}

// hydroIndicators are the single characters marking a 2-4 character
// word as a likely hydrology term.
var hydroIndicators = []rune{
	'水', '文', '雨', '洪', '涝', '旱', '河', '湖', '库', '坝', '闸', '泵', '灌', '排',
}
