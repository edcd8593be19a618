package flight

import (
	"fmt"
	"strings"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// User-facing prompt texts for the workflow's suspension gates. All menu
// gates accept numeric choices only; anything else re-prompts without
// touching business state.
const (
	invalidApproval  = "Invalid choice. Please enter 1 to approve or 0 to reject."
	invalidSelection = "Invalid choice. Please enter 1, 2 or 3."
	invalidConfirm   = "Invalid choice. Please enter 1, 0 or 2."
	invalidPolicy    = "Invalid choice. Please enter 1, 0 or 2."
	invalidEscalate  = "Invalid choice. Please enter 1, 0, 2 or 3."

	confirmMenu = "Do you confirm these selections?\n" +
		"Enter 1 to confirm, 0 to change your flight selections, or 2 to change your search criteria and look for other flights:"

	policyMenu = "Enter 1 to request an exception approval from your manager, " +
		"0 to change your flight selections, or 2 to change your search criteria and look for other flights:"

	notePrompt = "If you have an additional message to pass to your manager about the exception approval, " +
		"type it now (or send an empty message to skip):"

	searchDone = "Thank you. Here are the flights I found. Please review the options and pick the one that suits you best."

	policyOK = "Your selected flights comply with the company policy. Proceeding with the ticket purchase..."

	policyViolated = "I'm sorry, your selected flights do not comply with the company policy."

	// rejectionNotice is delivered to the reasoner as a tool-error result
	// when the user rejects a search tool call at the review gate.
	rejectionNotice = "The user has manually rejected the tool call for searching flights with the current parameters. " +
		"This is not an error; it indicates that the user likely wants to update or change the search criteria " +
		"(e.g., different dates, destinations). Acknowledge the rejection gracefully and ask the user how they'd " +
		"like to proceed or what they'd like to change about their request."

	// restartMessage is the synthetic user turn injected when the user
	// abandons the current attempt to search again.
	restartMessage = "I want to change my search criteria and look for other flights."
)

// approvalPrompt summarizes the pending search call for the review gate.
func approvalPrompt(args domain.SearchArgs) string {
	tripLabel := "One-way"
	returnDate := "---"
	if args.TripType == domain.TripTwoWay {
		tripLabel = "Round trip"
		returnDate = args.ReturnDate
	}
	return fmt.Sprintf(
		"Do you approve a flight search with this information?\n"+
			"- From: %s\n- To: %s\n- Trip type: %s\n- Departure date: %s\n- Return date: %s\n\n"+
			"Enter 1 to approve, 0 to reject:",
		args.FromCity, args.ToCity, tripLabel, args.DepartDate, returnDate)
}

// selectionPrompt lists the retrieved offers for one leg as a numeric menu.
func selectionPrompt(leg domain.Leg, offers []domain.Offer) string {
	label := "departure"
	if leg == domain.LegReturn {
		label = "return"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Please select one of the following %s flights:\n", label)
	for i, o := range offers {
		fmt.Fprintf(&b, "%d- Airline: %s | Departure: %s | Arrival: %s | Duration: %s | Cabin: %s | Price: %d TL | Code: %s\n",
			i+1, o.Airline, o.DepartureTime, o.ArrivalTime, o.Duration, o.CabinClass, o.Price, o.FlightCode)
	}
	b.WriteString("\nEnter your choice (1, 2 or 3):")
	return b.String()
}

// confirmationPrompt summarizes the selected pair before the policy check.
func confirmationPrompt(depart *domain.Offer, ret *domain.Offer) string {
	var b strings.Builder
	b.WriteString("Your selected flights:\n")
	fmt.Fprintf(&b, "- Flight: departure | Code: %s\n", depart.FlightCode)
	if ret != nil {
		fmt.Fprintf(&b, "- Flight: return | Code: %s\n", ret.FlightCode)
	}
	b.WriteString("\n")
	b.WriteString(confirmMenu)
	return b.String()
}

// violationReport surfaces every violating leg's details together.
func violationReport(violations []domain.Violation) string {
	var b strings.Builder
	b.WriteString(policyViolated)
	for _, v := range violations {
		label := "departure"
		if v.Leg == domain.LegReturn {
			label = "return"
		}
		fmt.Fprintf(&b, "\n\nThe %s flight (%s) violates the following policy rules:\n%s", label, v.FlightCode, v.Details)
	}
	b.WriteString("\n\n")
	b.WriteString(policyMenu)
	return b.String()
}

// escalationReviewPrompt offers the final escalation menu. The wording of
// option 3 depends on whether a note was already entered.
func escalationReviewPrompt(note string) string {
	noteAction := "add a message for your manager"
	if note != "" {
		noteAction = "change the message for your manager"
	}
	return fmt.Sprintf(
		"Enter 1 to send the request to your manager, 0 to change your flight selections, "+
			"2 to change your search criteria and look for other flights, or 3 to %s:", noteAction)
}

// purchaseSummary confirms the issued tickets to the user.
func purchaseSummary(depart *domain.Ticket, ret *domain.Ticket) string {
	var b strings.Builder
	b.WriteString("Your booking is complete. Ticket details:\n")
	fmt.Fprintf(&b, "- Departure | Code: %s | Seat: %d | Confirmation: %s\n",
		depart.FlightCode, depart.SeatNumber, depart.ConfirmationCode)
	if ret != nil {
		fmt.Fprintf(&b, "- Return | Code: %s | Seat: %d | Confirmation: %s\n",
			ret.FlightCode, ret.SeatNumber, ret.ConfirmationCode)
	}
	return b.String()
}

// escalationSummary confirms the sent escalation to the user.
func escalationSummary(req string) string {
	msg := "Your exception request has been sent to your manager. " +
		"You will be notified by e-mail once it is approved."
	if req != "" {
		msg += "\nAttached message: " + req
	}
	return msg
}

// bookingCompleteMessage is folded into the flight conversation so the
// reasoner treats the booking as finished on later turns.
func bookingCompleteMessage(args domain.SearchArgs, depart *domain.Ticket, ret *domain.Ticket) string {
	return fmt.Sprintf(
		"This is a system message indicating that the user has successfully completed their flight booking.\n"+
			"- Trip details: %+v\n- Departure ticket: %s\n- Return ticket: %s\n"+
			"Consider the booking finished and do not start a new search unless the user asks for one.",
		args, describeTicket(depart), describeTicket(ret))
}

// escalationCompleteMessage is the escalation-path counterpart of
// bookingCompleteMessage.
func escalationCompleteMessage(args domain.SearchArgs, depart *domain.Offer, ret *domain.Offer) string {
	return fmt.Sprintf(
		"This is a system message indicating that the user has requested an exception approval from their manager "+
			"for flights outside the company policy. The tickets will be purchased once the manager approves.\n"+
			"- Trip details: %+v\n- Departure flight: %s\n- Return flight: %s\n"+
			"Consider the flight process finished and do not start a new search unless the user asks for one.",
		args, describeOffer(depart), describeOffer(ret))
}
