package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "material").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "解析エラー"
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "unknown_shape_type":
			return "未知の形状タイプです"
		case "invalid_shape_parameters":
			return "形状パラメータが不正です: " + data["field"]
		case "invalid_property_table":
			return "物性テーブルが不正です"
		case "invalid_volume_fractions":
			return "体積分率の合計が不正です"
		case "circular_material_reference":
			return "材料参照が循環しています"
		case "unknown_material_reference":
			return "未知の材料参照です: " + data["material"]
		case "unresolved_shape_reference":
			return "形状参照を解決できません: " + data["shape"]
		case "unresolved_material_reference":
			return "材料参照を解決できません: " + data["material"]
		case "cyclic_geometry_reference":
			return "形状階層が循環しています"
		case "duplicate_object_material":
			return "オブジェクト材料の割り当てが重複しています"
		case "dangling_object_material":
			return "オブジェクト材料の対象が存在しません"
		case "orphaned_power_map":
			return "パワーマップの対象が存在しません"
		case "missing_thermal_parameter":
			return "必須の熱パラメータが不足しています: " + data["key"]
		case "unknown_solver_type":
			return "未知のソルバータイプです"
		case "unknown_netlist_node":
			return "ネットリストノードが未定義です"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "parse error"
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "unknown_key":
			return "unknown key"
		case "unknown_shape_type":
			return "unknown shape type"
		case "invalid_shape_parameters":
			return "invalid shape parameter: " + data["field"]
		case "invalid_property_table":
			return "invalid property table"
		case "invalid_volume_fractions":
			return "volume fractions do not sum to 1"
		case "circular_material_reference":
			return "circular material reference"
		case "unknown_material_reference":
			return "unknown material reference: " + data["material"]
		case "unresolved_shape_reference":
			return "unresolved shape reference: " + data["shape"]
		case "unresolved_material_reference":
			return "unresolved material reference: " + data["material"]
		case "cyclic_geometry_reference":
			return "cyclic geometry reference"
		case "duplicate_object_material":
			return "duplicate object material binding"
		case "dangling_object_material":
			return "object material target does not exist"
		case "orphaned_power_map":
			return "power map target does not exist"
		case "missing_thermal_parameter":
			return "required thermal parameter missing: " + data["key"]
		case "unknown_solver_type":
			return "unknown solver type"
		case "unknown_netlist_node":
			return "netlist node does not match a component"
		}
	}
	return code
}

var current Translator = dictTranslator{lang: "en"}

// SetLanguage selects a built-in dictionary language ("en" or "ja").
func SetLanguage(lang string) { current = dictTranslator{lang: lang} }

// SetTranslator replaces the active Translator; nil values are ignored.
func SetTranslator(t Translator) {
	if t != nil {
		current = t
	}
}

// T renders the default message for a code.
func T(code string, data map[string]string) string {
	if data == nil {
		data = map[string]string{}
	}
	return current.Message(code, data)
}
