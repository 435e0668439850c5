package batch

import (
	"github.com/Alia5/pbtmpl/internal/rule"
)

// Kind names the entity a job is bound to.
type Kind string

const (
	KindService Kind = "service"
	KindMessage Kind = "message"
	KindEnum    Kind = "enum"
	KindGlobal  Kind = "global"
)

// Flat are the selections given directly on the command line.
type Flat struct {
	ServiceNames       []string
	RpcInclude         string
	RpcExclude         string
	ServiceTemplates   []string
	RpcTemplates       []string
	MessageNames       []string
	FieldInclude       string
	FieldExclude       string
	MessageTemplates   []string
	FieldTemplates     []string
	EnumNames          []string
	EnumValueInclude   string
	EnumValueExclude   string
	EnumTemplates      []string
	EnumValueTemplates []string
	GlobalTemplates    []string
}

// Job is one unit of generation. Name is empty for global jobs.
type Job struct {
	Kind      Kind
	Name      string
	Include   string
	Exclude   string
	Ignore    []string
	Outer     []rule.Rule
	Inner     []rule.Rule
	OutputDir string
	Overwrite *bool
	Variables map[string]any
}

// Plan lists every job in execution order: flat services, messages, enums
// and global templates first, then document rules as declared.
func Plan(flat Flat, doc *Document) []Job {
	var jobs []Job
	for _, name := range flat.ServiceNames {
		jobs = append(jobs, Job{
			Kind:    KindService,
			Name:    name,
			Include: flat.RpcInclude,
			Exclude: flat.RpcExclude,
			Outer:   rule.ParseAll(flat.ServiceTemplates),
			Inner:   rule.ParseAll(flat.RpcTemplates),
		})
	}
	for _, name := range flat.MessageNames {
		jobs = append(jobs, Job{
			Kind:    KindMessage,
			Name:    name,
			Include: flat.FieldInclude,
			Exclude: flat.FieldExclude,
			Outer:   rule.ParseAll(flat.MessageTemplates),
			Inner:   rule.ParseAll(flat.FieldTemplates),
		})
	}
	for _, name := range flat.EnumNames {
		jobs = append(jobs, Job{
			Kind:    KindEnum,
			Name:    name,
			Include: flat.EnumValueInclude,
			Exclude: flat.EnumValueExclude,
			Outer:   rule.ParseAll(flat.EnumTemplates),
			Inner:   rule.ParseAll(flat.EnumValueTemplates),
		})
	}
	if len(flat.GlobalTemplates) > 0 {
		jobs = append(jobs, Job{
			Kind:  KindGlobal,
			Outer: rule.ParseAll(flat.GlobalTemplates),
		})
	}

	if doc == nil {
		return jobs
	}
	for _, e := range doc.Rules {
		switch {
		case e.Service != nil:
			s := e.Service
			jobs = append(jobs, withCommon(Job{
				Kind:    KindService,
				Name:    s.Name,
				Include: s.RpcInclude,
				Exclude: s.RpcExclude,
				Outer:   s.ServiceTemplate,
				Inner:   s.RpcTemplate,
			}, s.Common))
		case e.Message != nil:
			m := e.Message
			jobs = append(jobs, withCommon(Job{
				Kind:    KindMessage,
				Name:    m.Name,
				Include: m.FieldInclude,
				Exclude: m.FieldExclude,
				Outer:   m.MessageTemplate,
				Inner:   m.FieldTemplate,
			}, m.Common))
		case e.Enum != nil:
			en := e.Enum
			jobs = append(jobs, withCommon(Job{
				Kind:    KindEnum,
				Name:    en.Name,
				Include: en.EnumValueInclude,
				Exclude: en.EnumValueExclude,
				Outer:   en.EnumTemplate,
				Inner:   en.EnumValueTemplate,
			}, en.Common))
		case e.Global != nil:
			jobs = append(jobs, withCommon(Job{
				Kind:  KindGlobal,
				Outer: e.Global.GlobalTemplate,
			}, e.Global.Common))
		}
	}
	return jobs
}

func withCommon(j Job, c Common) Job {
	j.OutputDir = c.OutputDirectory
	j.Overwrite = c.Overwrite
	j.Variables = c.CustomVariables
	j.Ignore = c.Ignore
	return j
}
