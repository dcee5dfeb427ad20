package source

import "github.com/nhle/job-tracker/internal/model"

// Subject templates use {company} and {title} placeholders; body
// templates use {{company}}, {{position}} and {{date}}.
var subjectTemplates = map[string][]string{
	model.StatusApplied: {
		"Application Received for {title} at {company}",
		"Thanks for applying to {company}",
		"We've received your application - {company}",
		"Your application is under review at {company}",
		"Job Application Confirmation - {company}",
		"Application for {title} at {company}",
	},
	model.StatusAssessment: {
		"Assessment Required for {title} at {company}",
		"Next Step: Online Assessment from {company}",
		"Please complete your assessment for {title}",
		"Assessment Invitation - {company}",
		"Pre-interview task: {title}",
		"Skill assessment from {company}",
	},
	model.StatusInterviewScheduled: {
		"Interview Scheduled with {company}",
		"Interview Invitation for {title}",
		"Your interview at {company} is confirmed",
		"Upcoming Interview: {title} at {company}",
		"Zoom Interview Scheduled with {company}",
		"First round interview invitation",
	},
	model.StatusInterviewComplete: {
		"Thanks for interviewing with {company}",
		"Interview for {title} completed",
		"Post-interview update",
		"Your interview status with {company}",
		"Interview Summary - {company}",
		"Follow-up after your interview",
	},
	model.StatusOffer: {
		"Offer from {company}",
		"You've been selected for {title}",
		"Congratulations! Offer for {title}",
		"Offer Package from {company}",
		"Position Offered: {title}",
		"Welcome to {company}!",
	},
	model.StatusRejected: {
		"Application Update from {company}",
		"Position Filled at {company}",
		"Thank you for your interest in {company}",
		"Your application status - {company}",
		"Application Closed - {title}",
		"Hiring decision made - {company}",
	},
}

var bodyTemplates = map[string][]string{
	model.StatusApplied: {
		"Thank you for applying to {{company}}. We've received your application for the {{position}} role.",
		"Your application for the {{position}} role has been successfully submitted.",
		"You applied for {{position}} at {{company}} and we're reviewing your background.",
		"This email confirms your application to {{company}}.",
		"We're currently reviewing applications for the {{position}} role.",
		"Application received for the position of {{position}}.",
	},
	model.StatusAssessment: {
		"We'd like you to complete an assessment for the {{position}} role at {{company}}.",
		"Your assessment is now live. Complete it by {{date}}.",
		"Please take the coding challenge before {{date}}.",
		"Please check the attached assessment for the {{position}} position.",
		"Complete this short test as the next step.",
		"Your profile is promising. Complete the test to move forward.",
	},
	model.StatusInterviewScheduled: {
		"Your interview with {{company}} is scheduled. Please check your calendar.",
		"Get ready! Your interview for the {{position}} is booked.",
		"Your interview is scheduled for {{date}}.",
		"Prepare to meet our team and discuss the {{position}} role.",
		"Expect a 45-minute conversation with our tech team.",
		"Let's discuss your future at {{company}}.",
	},
	model.StatusInterviewComplete: {
		"Thanks for taking the time to interview with us.",
		"Your interview for {{position}} is now complete.",
		"We're currently reviewing your interview feedback.",
		"You've completed the interview process for {{position}}.",
		"Thanks again for considering {{company}}.",
		"You've officially completed all interview stages.",
	},
	model.StatusOffer: {
		"We are pleased to offer you the {{position}} position at {{company}}.",
		"Congratulations! You've been selected for the role.",
		"Here's your official offer from {{company}}.",
		"Your journey with {{company}} is about to begin.",
		"You're our top choice for {{position}}.",
		"Details of your compensation and role are enclosed.",
	},
	model.StatusRejected: {
		"After careful consideration, we won't be moving forward with your application.",
		"You were not selected for the {{position}} position.",
		"We had many strong applicants and made a difficult decision.",
		"Your qualifications were impressive, but not the right fit.",
		"Thank you for your interest in the {{position}} at {{company}}.",
		"This role is now filled, but we're keeping your resume.",
	},
}

// statusKeys fixes the iteration order so generation is deterministic
// for a given seed.
var statusKeys = []string{
	model.StatusApplied,
	model.StatusAssessment,
	model.StatusInterviewScheduled,
	model.StatusInterviewComplete,
	model.StatusOffer,
	model.StatusRejected,
}

var jobTitles = []string{
	"Frontend Developer", "Backend Engineer", "Full Stack Developer",
	"Data Scientist", "Machine Learning Engineer", "DevOps Engineer",
	"Product Manager", "UX Designer", "Mobile Developer", "QA Tester",
	"Solutions Architect", "Cloud Engineer", "Technical Writer",
	"Database Administrator", "Cybersecurity Analyst", "Network Engineer",
	"Site Reliability Engineer", "Platform Engineer", "Systems Analyst",
	"Web Developer",
}

var companies = []string{
	"TechNova", "ByteSpark", "InnoCore", "LoopWorks", "Nimbus",
	"GreenByte", "Zentry", "HelixAI", "PulseSoft", "Quanta",
	"CloudHive", "Lumina", "Nexovate", "SkyGrid", "Altura",
	"BrightStack", "DeepLayer", "Flexora", "Omnisync", "Codexa",
}
