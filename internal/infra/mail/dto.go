package mail

type AssignmentEmailData struct {
	TeacherName string
	LeadCount   int
	Remark      string
}
