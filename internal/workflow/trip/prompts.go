package trip

import (
	"fmt"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

const (
	carUnavailable = "This is a system message indicating that the car rental assistance is currently unavailable. " +
		"Therefore, the user has been redirected back to you (travel assistant). Please generate a message that " +
		"informs the user of the situation and offer further assistance with other services they might need."

	hotelUnavailable = "This is a system message indicating that the hotel reservation assistance is currently unavailable. " +
		"Therefore, the user has been redirected back to you (travel assistant). Please generate a message that " +
		"informs the user of the situation and offer further assistance with other services they might need."
)

var intentServices = map[domain.Intent]string{
	domain.IntentFlight: "flight booking",
	domain.IntentCar:    "car rental",
	domain.IntentHotel:  "hotel reservation",
}

func handoffNotice(intent domain.Intent) string {
	return fmt.Sprintf("Connecting you to the %s assistant.", intentServices[intent])
}
