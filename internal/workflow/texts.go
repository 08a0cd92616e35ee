package workflow

// Static conversational text. Captions that embed record fields are built
// inline in the handlers that own them.
const (
	welcomeText = "Welcome to BRACU Resource Bot \U0001F4DA\n\n" +
		"➡️Type !CSE421 (with your course code) to get resources.\n\n" +
		"➡️Type or use /upload to contribute resources. Admin approval is required.\n\n" +
		"➡️Type or use /help for all the instructions and features.\n\n" +
		"Let's help each other by sharing resources! \U0001F91D"

	helpText = "\U0001F4DA BRACU Resource Bot - how to use it\n\n" +
		"• !CSE421 - get resources for a course (use any course code).\n" +
		"• /upload - contribute a resource. Send the course code first, then the file. " +
		"Every upload is reviewed by the admin before it appears.\n" +
		"• /courselist - list courses that currently have resources.\n" +
		"• Request Delete under any resource - ask the admin to remove it, with a reason.\n\n" +
		"Files and photos are both accepted. Zipping related files into one upload is recommended."

	unknownText = "ℹ️ I didn’t understand that.\nType /help to see how to use the bot."
)
