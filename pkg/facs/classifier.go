package facs

// Emotion is a classified emotion label.
type Emotion string

const (
	EmotionNeutral   Emotion = "Neutral"
	EmotionHappy     Emotion = "Happy"
	EmotionAngry     Emotion = "Angry"
	EmotionSad       Emotion = "Sad"
	EmotionSurprised Emotion = "Surprised"
	EmotionCurious   Emotion = "Curious"
)

// Emotions lists every label Classify can return.
var Emotions = []Emotion{
	EmotionNeutral,
	EmotionHappy,
	EmotionAngry,
	EmotionSad,
	EmotionSurprised,
	EmotionCurious,
}

// Valid reports whether e is one of the known labels.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// DefaultThreshold is the z-score magnitude treated as a significant deviation.
const DefaultThreshold = 2.0

// Classify maps z-scores to an emotion using DefaultThreshold.
func Classify(z ZScores) Emotion {
	return ClassifyWithThreshold(z, DefaultThreshold)
}

// ClassifyWithThreshold evaluates the rules in priority order; first match wins.
// Narrowed eyes without brow lowering read as Happy even when the brows are
// also raised, so that rule is checked before the brow rules.
func ClassifyWithThreshold(z ZScores, threshold float64) Emotion {
	ear := z[FeatureEAR]
	au1 := z[FeatureAU1]
	au2 := z[FeatureAU2]
	au4 := z[FeatureAU4]

	switch {
	case ear < -threshold && au4 > -1.0:
		return EmotionHappy
	case au4 < -threshold:
		return EmotionAngry
	case au1 > threshold && au2 > threshold:
		if ear > threshold {
			return EmotionSurprised
		}
		return EmotionCurious
	case au1 > threshold && au4 < 0:
		return EmotionSad
	default:
		return EmotionNeutral
	}
}
