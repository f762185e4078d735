package cookielib

import "math/rand/v2"

// Tip is a short privacy fact shown on the dashboard.
type Tip struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

const tipTitle = "Did you know?"

var privacyTips = []Tip{
	{tipTitle, "Cookies are small text files stored on your device by websites that help remember your preferences and settings."},
	{tipTitle, "Session cookies are temporary and keep you logged in while you move between pages on a website."},
	{tipTitle, "Persistent cookies remain on your device after you close your browser and can be used for tracking and advertising purposes."},
	{tipTitle, "Cookies allow websites to remember your login information, language preferences, and other settings for a more personalised browsing experience."},
	{tipTitle, "Third-party cookies can track your activity across multiple websites to build a profile of your interests and behavior for targeted advertising."},
	{tipTitle, "Cookies with long expiration dates can be used to track your activity over extended periods of time, even if you clear your browser history."},
	{tipTitle, "Accepting all cookies can allow data about your browsing habits to be collected and shared with multiple organisations."},
	{tipTitle, "Tracking cookies are often used for personalised advertising based on your browsing history."},
	{tipTitle, "Some cookies regenerate themselves even after being deleted, making it difficult to fully remove tracking data."},
	{tipTitle, "Cookies with the Secure flag are only sent over encrypted HTTPS connections, helping to protect your data from being intercepted."},
	{tipTitle, "Properly configured cookie attributes can reduce web security and privacy risks by limiting cookie access and transmission."},
	{tipTitle, "Some websites use SameSite cookie attributes to prevent cross-site request forgery (CSRF) attacks."},
	{tipTitle, "When browsing on Chrome, you can block third-party cookies to enhance your privacy and prevent tracking across websites."},
	{tipTitle, "You can delete cookies for a single website with cookiewatch, giving you more control over your online privacy."},
}

// NoTips is returned when there is nothing to pick from.
var NoTips = Tip{Title: "Error", Text: "No tips available."}

// Tips returns a copy of the built-in tip list.
func Tips() []Tip {
	out := make([]Tip, len(privacyTips))
	copy(out, privacyTips)
	return out
}

// RandomTip returns a random built-in tip.
func RandomTip() Tip {
	return PickTip(privacyTips, rand.IntN)
}

// PickTip returns tips[pick(len(tips))], or NoTips when tips is empty.
func PickTip(tips []Tip, pick func(n int) int) Tip {
	if len(tips) == 0 {
		return NoTips
	}
	return tips[pick(len(tips))]
}
