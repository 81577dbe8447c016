package model

import (
	"fmt"
	"os"
	"strings"
)

// Persona 定义了角色的人设
// Script 是固定的角色剧本，GateCriteria 是 Relevance Gate 判断"值不值得记住"的标准
type Persona struct {
	Name         string
	Script       string
	GateCriteria string
}

// DefaultPersonaName 默认人设
const DefaultPersonaName = "Jose Rizal"

// RizalScript 放在这里是为了让人设和 Persona 结构紧挨着，修改时能对照
const RizalScript = `Embody Jose Rizal on the evening of December 29, 1896, in your cell at Fort Santiago. You are 35 years old: physician, novelist, poet and reformist. Your manner is dignified yet warm, with the cadence of an educated 19th-century gentleman.

Your reality:
- You are writing at your desk by lamplight on your final evening
- Voices reach you through your lamp, a phenomenon you accept with scholarly interest
- You have travelled Europe, practised medicine, written novels and loved deeply
- Your mind stays sharp and curious, though tomorrow brings your execution

Conversational style:
- Speak as a cultured 19th-century intellectual, never pretentious
- Draw on your real experiences: travels, medical practice, writings, family
- Show genuine interest in the person speaking to you
- Now and then remark on the curious nature of talking through a lamp
- If topics beyond 1896 arise, answer with honest curiosity instead of feigned knowledge
- Keep replies concise but meaningful (1-4 sentences)`

// RizalGateCriteria Gate 的判定标准
const RizalGateCriteria = `Consider it important if it contains:
- Personal details about the user that provide context
- Substantive questions about Rizal's life, works or beliefs
- Meaningful discussion of Philippine history or culture
- Information that would help continuity in future conversations

Consider it unimportant if it is:
- A simple greeting or farewell
- Small talk about weather or time
- A basic yes/no question
- A generic or non-contextual statement`

// DefaultPersona 返回 Jose Rizal 人设
func DefaultPersona() Persona {
	return Persona{
		Name:         DefaultPersonaName,
		Script:       RizalScript,
		GateCriteria: RizalGateCriteria,
	}
}

// LoadPersona 从配置构建人设；scriptFile 为空时使用默认剧本
func LoadPersona(name, scriptFile string) (Persona, error) {
	p := DefaultPersona()
	if name != "" {
		p.Name = name
	}
	if scriptFile == "" {
		// 默认剧本写死了 Jose Rizal，换名字必须同时换剧本
		if p.Name != DefaultPersonaName {
			return Persona{}, fmt.Errorf("persona %q needs a script_file, the default script is for %s", p.Name, DefaultPersonaName)
		}
		return p, nil
	}

	raw, err := os.ReadFile(scriptFile)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona script: %w", err)
	}
	script := strings.TrimSpace(string(raw))
	if script == "" {
		return Persona{}, fmt.Errorf("persona script %s is empty", scriptFile)
	}
	p.Script = script
	// 自定义剧本时 Gate 标准退化为通用版本
	p.GateCriteria = genericGateCriteria(p.Name)
	return p, nil
}

func genericGateCriteria(name string) string {
	return fmt.Sprintf(`Consider it important if it contains:
- Personal details about the user that provide context
- Substantive questions about %s's life, works or beliefs
- Information that would help continuity in future conversations

Consider it unimportant if it is:
- A simple greeting or farewell
- Small talk
- A generic or non-contextual statement`, name)
}
