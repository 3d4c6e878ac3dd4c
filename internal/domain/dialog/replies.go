package dialog

import (
	"fmt"
	"strings"

	"sawa/internal/domain/company"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
)

// WhatsApp renders *text* as bold; the replies lean on that.

const menuText = `*Sawa HR*

*FOR EMPLOYERS:*
REGISTER - Setup company
ADD EMPLOYEE - Add team
PAYROLL - Calculate salaries
LIST - View employees

*HIRING:*
POST JOB - Create job listing
CANDIDATES - View applicants

*FOR EMPLOYEES:*
PAYSLIP - View yours
LEAVE - Check balance

*FOR CANDIDATES:*
APPLY <code> - Apply to a job

*OTHER:*
RESET PIN - Change your PIN
HELP - All commands`

const (
	replyCancelled      = "Cancelled. Type HELP for the menu."
	replyNothingToDo    = "Nothing in progress. Type HELP for the menu."
	replyBusy           = "Still working on your previous message, give me a second."
	replyRetryLater     = "Something went wrong on our side. Please try again in a moment."
	replyNotRegistered  = "Please REGISTER your company first."
	replyManagersOnly   = "Only owners and admins can do that."
	replyNoEmployees    = "No employees yet. Type ADD EMPLOYEE to add your team."
	replyPinPrompt      = "Enter your 4-digit PIN:"
	replyPinSetupPrompt = "Set a 4-digit PIN for secure operations:"
	replyPinInvalid     = "PIN must be exactly 4 digits."
	replyPinWrong       = "Wrong PIN. Try again or type CANCEL."
	replyEmailInvalid   = "That doesn't look like an email. Try something like hr@company.com"
	replyPhoneInvalid   = "That doesn't look like a phone number. Please enter 7-15 digits."
	replyAmountInvalid  = "That doesn't look like an amount. Try 200000, 200k or 3.5m."
	replyNoEmployeeRec  = "No employee record found for your number.\n\nAsk your employer to add you via ADD EMPLOYEE."
)

func selectionRangeReply(size int) string {
	return fmt.Sprintf("Pick a number from 1-%d, or type CANCEL.", size)
}

func employeeAddedReply(emp *company.Employee) string {
	return fmt.Sprintf(`*Employee Added!*

%s (%s)
Position: %s
Gross: %s

*Next:*
- ADD EMPLOYEE
- PAYROLL
- LIST`, emp.Name, emp.Code, emp.Position, payroll.FormatNaira(emp.Salary.Gross()))
}

func rosterReply(title string, emps []company.Employee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s Team (%d)*\n\n", title, len(emps))
	for i, emp := range emps {
		position := emp.Position
		if position == "" {
			position = "N/A"
		}
		fmt.Fprintf(&b, "*%d. %s*\n   %s\n   %s\n\n", i+1, emp.Name, position, payroll.FormatNaira(emp.Salary.Gross()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func payrollConfirmReply(emps []company.Employee, period string) string {
	total := payroll.Kobo(0)
	for _, emp := range emps {
		total += emp.Salary.Gross()
	}
	return fmt.Sprintf("*Payroll %s*\n\n%d employees, total gross %s.\n\nReply YES to run payroll or CANCEL to stop.",
		period, len(emps), payroll.FormatNaira(total))
}

func payrollSummaryReply(records []payroll.Record, totalNet payroll.Kobo, period string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*PAYROLL - %s*\n\n%d employees\n\n", period, len(records))
	for i, rec := range records {
		fmt.Fprintf(&b, "*%d. %s*\nGross: %s\nDeductions: %s\n*Net: %s*\n\n",
			i+1, rec.EmployeeName,
			payroll.FormatNaira(rec.Slip.Gross),
			payroll.FormatNaira(rec.Slip.TotalDeductions()),
			payroll.FormatNaira(rec.Slip.Net))
	}
	line := strings.Repeat("━", 25)
	fmt.Fprintf(&b, "%s\n*TOTAL NET: %s*\n%s\n\n", line, payroll.FormatNaira(totalNet), line)
	fmt.Fprintf(&b, "Reply 1-%d to view a payslip", len(records))
	return b.String()
}

func leaveBalanceReply(emp *company.Employee, year int) string {
	return fmt.Sprintf("*Leave Balance*\n\n*%s*\n\nAnnual Leave: *%d days*\nYear: %d\n\nContact your HR admin to request leave.",
		emp.Name, emp.LeaveBalance, year)
}

func leaveOverviewReply(emps []company.Employee) string {
	var b strings.Builder
	b.WriteString("*Leave Balances*\n\n")
	for _, emp := range emps {
		fmt.Fprintf(&b, "*%s*: %d days\n", emp.Name, emp.LeaveBalance)
	}
	return strings.TrimRight(b.String(), "\n")
}

func jobPostedReply(job *hiring.Job) string {
	return fmt.Sprintf("Job posted!\n\nCode: *%s*\nTitle: %s\n\nCandidates can apply by texting:\n*APPLY %s*",
		job.Code, job.Title, job.Code)
}

func jobConfirmReply(title, description, requirements, location, salaryRange string) string {
	if salaryRange == "" {
		salaryRange = "Not specified"
	}
	return fmt.Sprintf(`*Here's your job posting:*

Title: *%s*
Description: %s
Requirements: %s
Location: %s
Salary: %s

Looks good? Say *yes* to post or *cancel* to discard.`,
		title, description, requirements, location, salaryRange)
}

func openJobsReply(jobs []hiring.Job, counts []int) string {
	var b strings.Builder
	b.WriteString("*Your Open Jobs*\n\n")
	for i, job := range jobs {
		fmt.Fprintf(&b, "*%d.* %s (%s) - %d applicant(s)\n", i+1, job.Title, job.Code, counts[i])
	}
	fmt.Fprintf(&b, "\nReply 1-%d to view candidates", len(jobs))
	return b.String()
}

func candidateListReply(title string, cands []hiring.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Candidates for %s*\n\n", title)
	for i, cand := range cands {
		fmt.Fprintf(&b, "*%d.* %s - _%s_\n", i+1, cand.Name, strings.ToUpper(cand.Stage))
	}
	fmt.Fprintf(&b, "\nReply 1-%d to manage a candidate", len(cands))
	return b.String()
}

func candidateActionReply(name, stage string) string {
	return fmt.Sprintf(`*%s* - _%s_

What would you like to do?

*1.* Advance to next stage
*2.* Reject
*3.* Send offer
*4.* Back`, name, strings.ToUpper(stage))
}
