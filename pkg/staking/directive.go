package staking

import (
	"fmt"
	"strings"
)

// Directive 标识质押交易携带的是哪一种消息。
// 数值直接写入链上编码, 与节点协议保持一致, 不允许重新编号。
type Directive uint8

const (
	DirectiveCreateValidator Directive = iota // 0
	DirectiveEditValidator                    // 1
	DirectiveDelegate                         // 2
	DirectiveUndelegate                       // 3
	DirectiveCollectRewards                   // 4
)

var directiveNames = map[Directive]string{
	DirectiveCreateValidator: "CreateValidator",
	DirectiveEditValidator:   "EditValidator",
	DirectiveDelegate:        "Delegate",
	DirectiveUndelegate:      "Undelegate",
	DirectiveCollectRewards:  "CollectRewards",
}

// Directives 按线上数值顺序返回全部指令
func Directives() []Directive {
	return []Directive{
		DirectiveCreateValidator,
		DirectiveEditValidator,
		DirectiveDelegate,
		DirectiveUndelegate,
		DirectiveCollectRewards,
	}
}

func (d Directive) Valid() bool {
	return d <= DirectiveCollectRewards
}

func (d Directive) String() string {
	if name, ok := directiveNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Directive(%d)", uint8(d))
}

// ParseDirective 接受名称 (忽略大小写, 允许 "-"/"_") 或数字
func ParseDirective(s string) (Directive, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s)))
	for d, name := range directiveNames {
		if strings.ToLower(name) == norm || fmt.Sprint(uint8(d)) == norm {
			return d, nil
		}
	}
	return 0, fmt.Errorf("未知的质押指令: %q", s)
}
