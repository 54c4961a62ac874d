package cron

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone checks must not depend on the host zoneinfo

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts 5-field expressions, an optional leading seconds
// field, and descriptors such as @daily.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// validateSpec rejects schedules that cannot be sent as a cron expression.
// Everything else is left to the gateway scheduler, see ScheduleWarnings.
func validateSpec(spec Spec) error {
	if strings.HasPrefix(spec.Schedule, "@every") {
		return &ValidationError{
			JobID:   spec.ID,
			Field:   "schedule",
			Message: fmt.Sprintf("cronJobs[%s].schedule is an interval, not a cron expression: %s", spec.ID, spec.Schedule),
		}
	}
	return nil
}

// ScheduleWarnings returns problems the gateway scheduler is likely to report
// for spec. They never block installation.
func ScheduleWarnings(spec Spec) []string {
	var warnings []string

	if !usesHostSyntax(spec.Schedule) {
		if _, err := scheduleParser.Parse(spec.Schedule); err != nil {
			warnings = append(warnings, fmt.Sprintf("cronJobs[%s].schedule may be invalid: %v", spec.ID, err))
		}
	}

	if spec.Timezone != "" {
		if _, err := time.LoadLocation(spec.Timezone); err != nil {
			warnings = append(warnings, fmt.Sprintf("cronJobs[%s].timezone is unknown: %s", spec.ID, spec.Timezone))
		}
	}

	return warnings
}

// usesHostSyntax reports whether expr uses day fields the gateway accepts
// but the local parser does not: L, W, #, and 7 for Sunday.
func usesHostSyntax(expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) < 5 || strings.HasPrefix(expr, "@") {
		return false
	}
	dom, dow := fields[len(fields)-3], fields[len(fields)-1]

	for _, token := range strings.Split(dom, ",") {
		if token == "L" || strings.HasSuffix(token, "L") || strings.HasSuffix(token, "W") {
			return true
		}
	}
	if strings.ContainsAny(dow, "#L") {
		return true
	}
	for _, token := range strings.FieldsFunc(dow, func(r rune) bool { return r == ',' || r == '-' || r == '/' }) {
		if token == "7" {
			return true
		}
	}
	return false
}
