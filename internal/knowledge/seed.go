package knowledge

import (
	"context"
	"fmt"

	"github.com/edubot/edubot-go/internal/storage"
)

// SeedEntries returns the initial knowledge-base records.
// Order matters: the matcher returns the first entry whose keywords hit.
func SeedEntries() []storage.KnowledgeEntry {
	return []storage.KnowledgeEntry{
		{
			Category: storage.CategoryCourse,
			Pattern:  "course information",
			Answer:   "You can find detailed course information including descriptions, prerequisites, and schedules in the official university course catalog or by contacting the academic department directly.",
			Keywords: "course, class, information, details, description, catalog",
		},
		{
			Category: storage.CategoryDeadline,
			Pattern:  "registration deadline",
			Answer:   "Fall registration ends August 25th. Spring registration ends January 15th. Summer registration deadlines vary by session. Always check the official academic calendar for the most current dates.",
			Keywords: "registration, deadline, enroll, sign up, add/drop, deadline",
		},
		{
			Category: storage.CategoryDeadline,
			Pattern:  "tuition payment deadline",
			Answer:   "Tuition payment is typically due two weeks before the semester starts. For Fall 2024, the deadline is August 15th. Late payments may incur fees.",
			Keywords: "tuition, payment, fee, deadline, pay, billing",
		},
		{
			Category: storage.CategoryResource,
			Pattern:  "library hours",
			Answer:   "Main Library Hours:\n- Monday-Thursday: 8:00 AM - 10:00 PM\n- Friday: 8:00 AM - 8:00 PM\n- Saturday: 10:00 AM - 6:00 PM\n- Sunday: 12:00 PM - 8:00 PM\n\n24/7 study rooms are available in the Student Center with student ID.",
			Keywords: "library, hours, open, close, study, research",
		},
		{
			Category: storage.CategoryResource,
			Pattern:  "tutoring center",
			Answer:   "The Academic Success Center offers free tutoring for most subjects:\n- Location: Student Services Building, Room 201\n- Hours: Mon-Fri 9AM-7PM, Sat 10AM-2PM\n- Schedule appointments online or walk-in\n- Subjects: Math, Science, Writing, Languages, and more",
			Keywords: "tutoring, tutor, help, academic, success, center, study",
		},
		{
			Category: storage.CategoryResource,
			Pattern:  "IT support",
			Answer:   "IT Help Desk Services:\n- Phone: (555) 123-HELP\n- Email: helpdesk@university.edu\n- Location: Tech Building, Room 100\n- Hours: 24/7 phone support, in-person 8AM-6PM Mon-Fri\n- Services: Password reset, software installation, network issues",
			Keywords: "IT, tech, computer, wifi, password, email, support, helpdesk",
		},
		{
			Category: storage.CategoryCourse,
			Pattern:  "prerequisites",
			Answer:   "Course prerequisites are listed in the course catalog. Generally, you need to complete introductory courses before advanced ones. Some departments require minimum grades in prerequisite courses. Check with your academic advisor for specific requirements.",
			Keywords: "prerequisites, requirements, needed, before, preparation",
		},
		{
			Category: storage.CategoryGeneral,
			Pattern:  "academic calendar",
			Answer:   "Key Academic Dates 2024-2025:\n- Fall Semester: Aug 26 - Dec 13\n- Spring Semester: Jan 13 - May 9\n- Summer Sessions: May 27 - Aug 2\n- Thanksgiving Break: Nov 27 - Dec 1\n- Spring Break: Mar 16 - Mar 23\n\nFull calendar available on the university website.",
			Keywords: "calendar, academic, dates, schedule, break, holiday",
		},
		{
			Category: storage.CategoryResource,
			Pattern:  "career services",
			Answer:   "Career Development Center Services:\n- Resume and cover letter reviews\n- Mock interviews\n- Job and internship postings\n- Career counseling\n- Career fairs (Fall: Oct 15, Spring: Feb 20)\n- Location: Career Center Building, Room 150",
			Keywords: "career, job, internship, resume, interview, employment",
		},
		{
			Category: storage.CategoryGeneral,
			Pattern:  "financial aid",
			Answer:   "Financial Aid Office Information:\n- FAFSA Deadline: March 1st for priority consideration\n- Office Hours: Mon-Fri 8:30AM-5:00PM\n- Contact: finaid@university.edu or (555) 123-AID\n- Services: Scholarships, grants, loans, work-study programs",
			Keywords: "financial aid, fafsa, scholarship, grant, loan, tuition, aid",
		},
	}
}

// Seed upserts the initial entries into the knowledge table.
// Idempotent: rerunning updates existing patterns in place.
// Returns the number of created and updated entries.
func Seed(ctx context.Context, db *storage.DB) (created, updated int, err error) {
	for _, entry := range SeedEntries() {
		e := entry
		wasCreated, err := db.UpsertKnowledgeEntry(ctx, &e)
		if err != nil {
			return created, updated, fmt.Errorf("seed entry %q: %w", entry.Pattern, err)
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}
