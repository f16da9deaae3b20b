package service

import (
	"fmt"

	"github.com/pawws/pawws/internal/model"
)

func welcomeEmailTemplate(animalsURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi,

Your account is ready. Meet the animals currently in our care and follow their recovery:
%s

Best,
The %s Team`, animalsURL, appName)

	return subject, body
}

func donationApprovedTemplate(amount int64, milestone *model.Milestone, donationsURL, appName string) (string, string) {
	subject := fmt.Sprintf("Thank you! Your donation to %s was approved", appName)
	body := fmt.Sprintf(`Hi,

We checked your proof of payment and your donation of %d has been added to "%s".
The milestone now stands at %d of %d.

See all your donations: %s

Best,
The %s Team`, amount, milestone.Title, milestone.CurrentAmount, milestone.Cost, donationsURL, appName)

	return subject, body
}

func donationRejectedTemplate(amount int64, milestone *model.Milestone, donationsURL, appName string) (string, string) {
	subject := fmt.Sprintf("About your donation to %s", appName)
	body := fmt.Sprintf(`Hi,

We could not match your proof of payment for the donation of %d to "%s" with a transfer, so it was not counted.

If you think this is a mistake, reply to this email with your payment receipt.

Your donations: %s

Best,
The %s Team`, amount, milestone.Title, donationsURL, appName)

	return subject, body
}
