package stylometry

// Fixed keyword lexicons used by the semantic and stylistic detectors.
// These are deliberately small: the extractor is a deterministic heuristic,
// not a statistical model, and every detector must produce identical output
// for identical input text.

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "wonderful": true,
	"amazing": true, "love": true, "happy": true, "joy": true,
	"beautiful": true, "fantastic": true, "delight": true, "brilliant": true,
	"success": true, "positive": true, "best": true, "perfect": true,
	"pleasant": true, "glad": true, "hope": true, "bright": true,
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "horrible": true,
	"hate": true, "sad": true, "angry": true, "fear": true,
	"ugly": true, "worst": true, "failure": true, "negative": true,
	"pain": true, "wrong": true, "problem": true, "difficult": true,
	"miserable": true, "gloomy": true, "dread": true, "poor": true,
}

var formalWords = map[string]bool{
	"furthermore": true, "moreover": true, "nevertheless": true,
	"consequently": true, "therefore": true, "thus": true,
	"accordingly": true, "hence": true, "whereas": true,
	"notwithstanding": true, "henceforth": true, "herein": true,
	"pursuant": true, "aforementioned": true, "shall": true,
	"regarding": true, "subsequently": true, "albeit": true,
}

var informalMarkers = map[string]bool{
	"gonna": true, "wanna": true, "gotta": true, "kinda": true,
	"sorta": true, "yeah": true, "nope": true, "okay": true,
	"ok": true, "stuff": true, "things": true, "lots": true,
	"cool": true, "awesome": true, "super": true, "totally": true,
}

// emotionKeywords drives the majority-vote tone classifier. "neutral" wins
// by default when no set scores.
var emotionKeywords = map[string]map[string]bool{
	"joy": {
		"happy": true, "joy": true, "delight": true, "cheerful": true,
		"excited": true, "love": true, "wonderful": true, "celebrate": true,
		"smile": true, "laugh": true,
	},
	"sadness": {
		"sad": true, "grief": true, "sorrow": true, "cry": true,
		"lonely": true, "miserable": true, "loss": true, "mourn": true,
		"gloomy": true, "despair": true,
	},
	"anger": {
		"angry": true, "rage": true, "furious": true, "hate": true,
		"annoyed": true, "irritated": true, "outrage": true, "resent": true,
		"hostile": true, "bitter": true,
	},
	"fear": {
		"fear": true, "afraid": true, "scared": true, "terror": true,
		"anxious": true, "worry": true, "panic": true, "dread": true,
		"nervous": true, "threat": true,
	},
}

// emotionOrder fixes the tie-break order for the tone vote so the result is
// deterministic regardless of map iteration order.
var emotionOrder = []string{"joy", "sadness", "anger", "fear"}

// transitionWords is the fixed connective list for the transition-word rate.
var transitionWords = map[string]bool{
	"however": true, "therefore": true, "moreover": true,
	"furthermore": true, "consequently": true, "nevertheless": true,
	"meanwhile": true, "additionally": true, "thus": true,
}

var firstPersonPronouns = map[string]bool{
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
	"we": true, "us": true, "our": true, "ours": true, "ourselves": true,
}

// idioms is the fixed idiom list for the idiom counter. Matched as literal
// lowercase substrings of the text.
var idioms = []string{
	"piece of cake",
	"break the ice",
	"hit the nail on the head",
	"once in a blue moon",
	"under the weather",
	"spill the beans",
	"cut corners",
	"on the same page",
	"at the end of the day",
	"the ball is in your court",
	"bite the bullet",
	"in a nutshell",
}
