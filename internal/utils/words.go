package utils

import "math/rand"

// Built-in pools. Drawing words are drawn server-side; truth/dare prompts
// back the default PromptSource when the actor asks for a generated one.

var drawingWords = []string{
	"apple", "bicycle", "campfire", "dolphin", "elephant", "firework",
	"guitar", "hamburger", "iceberg", "jellyfish", "kangaroo", "lighthouse",
	"mountain", "notebook", "octopus", "penguin", "rainbow", "sandcastle",
	"telescope", "umbrella", "volcano", "waterfall", "xylophone", "zeppelin",
	"ice cream", "hot air balloon", "roller coaster", "shooting star",
}

var truthPrompts = []string{
	"What is the most embarrassing song on your playlist?",
	"What is a talent you wish you had?",
	"What was your worst fashion phase?",
	"What is the strangest food combination you enjoy?",
	"What app do you waste the most time on?",
	"What is the last lie you told?",
}

var darePrompts = []string{
	"Speak in an accent until your next turn.",
	"Let the group pick your avatar for the rest of the game.",
	"Send the third emoji in your recents to the chat with no context.",
	"Do your best impression of another player.",
	"Sing the chorus of the last song you listened to.",
	"Hold your breath for fifteen seconds on camera.",
}

func RandomDrawingWord() string {
	return drawingWords[rand.Intn(len(drawingWords))]
}

func RandomTruth() string {
	return truthPrompts[rand.Intn(len(truthPrompts))]
}

func RandomDare() string {
	return darePrompts[rand.Intn(len(darePrompts))]
}
