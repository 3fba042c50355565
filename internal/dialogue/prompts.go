package dialogue

// Spoken prompts for the local pipeline, in Urdu (Roman script).
const (
	promptInboundGreeting = "Assalam-o-Alaikum, Sehat Clinic. Ji farmayein?"
	promptAskName         = "Apna naam batayein, please."
	promptAskPhone        = "Shukriya. Apna phone number batayein."
	promptRepeatPhone     = "Phone number dobara batayein, please."
	promptAskIsNew        = "Kya aap pehli dafa aa rahe hain?"
	promptRepeatYesNo     = "Maazrat, sirf haan ya nahi batayein."
	promptAskTime         = "Kis din aur kis time appointment chahiye?"
	promptRepeatTime      = "Time dobara batayein, please."
	promptConfirmFormat   = "Confirm kar dein: Naam %s, number %s, time %s. Kya main save kar dun?"
	promptRepeatConfirm   = "Maazrat, haan ya nahi batayein."
	promptRestartName     = "Theek hai. Dobara bata dein, aapka naam?"
	promptBookedGoodbye   = "Appointment save ho gaya. Allah Hafiz."

	promptOutboundGreetingFormat = "Assalam-o-Alaikum, %s ki appointment hai %s. Kya aap aa rahay hain?"
	promptRepeatOutbound         = "Maazrat, samajh nahi aaya. Kya aap confirm kar rahe hain?"
	promptUpdatedGoodbye         = "Update kar diya. Allah Hafiz."
)
