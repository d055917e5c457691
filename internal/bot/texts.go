package bot

import "weatherbot/internal/conversation"

// User-facing texts. The conversation controller receives its own subset
// via conversation.Texts so it stays free of presentation concerns.
const (
	greetingText = "Hi! I can tell you the weather and what to wear for it. 🌦\n\n" +
		"Start with /set_location, then ask /current_weather any time."

	locationInquiryText = "Let's set up your location! 🌍\n\n" +
		"You can either send your location or type the name of the nearest town."

	cancellationText = "Looks like something went wrong. 😟\n\nTry again later."

	timeoutText = "Okay, no reply.\n\n" +
		"Anyway, the time is up ⏰, but you can try again later."

	incorrectSearchResultText = "Sorry, looks like I could not find your location. 😓\n\n" +
		"Try changing your query, it might have typos or be too specific."

	locationNotSetText = "Looks like your location is not set yet 👀.\n\n" +
		"Use /set_location to set it."

	whichOneText    = "Which one of the following locations is yours?"
	noneOfThoseText = "None of those"

	nothingActiveText = "There is nothing to cancel right now."

	unknownTextReply = "I did not get that. " +
		"Try /set_location or /current_weather."

	unexpectedLocationText = "Nice place! Use /set_location first if you want me to remember it."

	myLocationTemplate = "Your current location is %s."

	currentWeatherTemplate = "Right now weather is %s.\n\n" +
		"The temperature is %.2f°C, but it feels like %.2f°C."
)

func dialogueTexts() conversation.Texts {
	return conversation.Texts{
		Inquiry:       locationInquiryText,
		Cancelled:     cancellationText,
		Timeout:       timeoutText,
		RetryGuidance: incorrectSearchResultText,
		WhichOne:      whichOneText,
		NoneOfThose:   noneOfThoseText,
		NothingActive: nothingActiveText,
	}
}
