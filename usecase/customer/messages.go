package customer

import "fmt"

func welcomeMessage(customerName, businessName string) string {
	if businessName == "" {
		businessName = "our salon"
	}
	return fmt.Sprintf("Hi %s! Welcome to %s. We look forward to seeing you again soon.", customerName, businessName)
}

func reviewRequestMessage(customerName, businessName string) string {
	if businessName == "" {
		businessName = "our salon"
	}
	return fmt.Sprintf("Hi %s! How was your experience at %s? Please rate your visit from 1 to 5 stars. Reply with a number between 1-5.", customerName, businessName)
}

func thankYouMessage(reviewLink string) string {
	if reviewLink == "" {
		return "Thank you for your positive feedback! We're glad you enjoyed your visit."
	}
	return fmt.Sprintf("Thank you for your positive feedback! Would you mind sharing your experience on Google? Here's our review link: %s", reviewLink)
}

func lowRatingAlertMessage(customerName string, rating int, feedback string) string {
	if feedback == "" {
		feedback = "No feedback provided"
	}
	return fmt.Sprintf("Low Rating Alert: %s rated their experience %d/5. Feedback: %s", customerName, rating, feedback)
}

func atRiskMessage(customerName string) string {
	return fmt.Sprintf("Hi %s! We miss you at our salon. Book your next appointment now and get 10%% off!", customerName)
}

func lostMessage(customerName string) string {
	return fmt.Sprintf("Hi %s! It's been a while. We'd love to see you again. Special 20%% discount on your next visit!", customerName)
}
