package ocr

import "strings"

const dropPrompt = `Analyze this Diablo 4 item screenshot. Extract the stats into a JSON format strictly matching this structure:
{
    "item_power": int,
    "base_affixes": [
        {"name": "Affix Name (Traditional Chinese)", "value": number, "isGA": boolean}
    ],
    "temper_affixes": [
        {"name": "Temper Name (Traditional Chinese)", "value": number}
    ],
    "aspect": {
        "name": "Aspect Name (Traditional Chinese, only the effect name)",
        "value": number
    }
}
RULES:
1. Translate all names to Traditional Chinese (繁體中文) matching Diablo 4 Taiwan terminology.
2. "isGA" is true if there is a star icon next to the stat.
3. Only extract numbers, ignore symbols like +, %, brackets.
4. If it's a Greater Affix (GA), the value is the boosted value.
5. At most 3 base affixes and 2 temper affixes.
6. For the aspect value, take the current value shown in blue/orange.
7. Return ONLY raw JSON, no markdown formatting.`

const affixDBPromptHead = `You are a Diablo 4 Database Assistant.
I will provide raw text containing Diablo 4 Affixes (Attributes) and Tempering Manuals.

Your task is to extract this data and output a strictly valid JSON.

TARGET FORMAT (Example):
{
  "Necromancer": {
    "label": "死靈法師",
    "icon": "💀",
    "base": ["智力", "最大生命"],
    "temper": ["【武器】骨矛雙倍傷害", "【攻擊】召喚傷害"]
  }
}

RULES:
1. Translate everything to Traditional Chinese (繁體中文) used in Taiwan server.
2. "base" contains native item affixes (e.g., Intelligence, Cooldown Reduction).
3. "temper" contains tempering manual options (e.g., Chance for Bone Spear to cast twice).
4. Categorize Tempering affixes with prefixes like `

const affixDBPromptTail = `.
5. If the text only contains data for one class (e.g. Sorcerer), only return that class in the JSON.
6. Return ONLY the JSON string. No markdown formatting.

RAW TEXT TO PROCESS:
`

func affixDBPrompt(tags []string, raw string) string {
	return affixDBPromptHead + strings.Join(tags, ", ") + affixDBPromptTail + raw
}
