package store

// Seed returns the fixture state used when nothing valid is stored yet:
// three weeks with the current one first, six semester goals and a
// prefilled November report.
func Seed() Snapshot {
	reports := make(map[MonthKey]ReportSection, len(Months))
	for _, m := range Months {
		reports[m] = ReportSection{}
	}
	reports["nov"] = ReportSection{
		Recruitment: "Fechamos 15 vagas no total este mês, reduzindo o SLA médio para 25 dias. Destaque para a rápida reposição na área comercial.",
		Turnover:    "Tivemos 2 desligamentos voluntários na unidade PFU. Entrevistas de desligamento apontam busca por melhores salários.",
		DHO:         "Pesquisa de clima teve 90% de adesão. Iniciamos os grupos focais para tratar os pontos de atenção em Comunicação Interna.",
		Projects:    "A implantação do ponto eletrônico facial foi concluída em todas as unidades com sucesso.",
	}

	return Snapshot{
		Weeks: []Week{
			{
				ID:            "w-current",
				WeekRange:     "01 Dez - 07 Dez, 2025",
				TopPriorities: [PrioritySlots]string{"Gerente de Vendas (SMA)", "Analista Fiscal (PFU)", "Programa de Estágio 2026", "Possíveis Entradas"},
				PriorityPipelines: [PrioritySlots][]PipelineCandidate{
					{
						{ID: "1", Name: "Ana Souza", Status: StatusInterviewManager},
						{ID: "2", Name: "Carlos Lima", Status: StatusInteraction},
						{ID: "3", Name: "Pedro Sales", Status: StatusProposal},
					},
					{
						{ID: "4", Name: "Roberto Firmino", Status: StatusInterviewRecruiter},
						{ID: "5", Name: "Julia Roberts", Status: StatusInteraction},
					},
					{
						{ID: "6", Name: "Lucas Tech", Status: StatusInteraction},
						{ID: "7", Name: "Fernanda UX", Status: StatusInterviewManager},
					},
					{
						{ID: "8", Name: "Mariana Silva (Banco)", Status: StatusInteraction},
						{ID: "9", Name: "Felipe Costa (Indicação)", Status: StatusInteraction},
					},
				},
				ReportThisWeek: ReportSection{
					Recruitment: "- Fechada vaga de Dev Senior (SCS)\n- Triagem de 50 CVs para Comercial",
					Turnover:    "- Onboarding de 3 novos analistas",
					DHO:         "- Pesquisa de Clima disparada",
					Projects:    "- Revisão de PDI iniciada",
				},
				ReportNextWeek: ReportSection{
					Recruitment: "- Iniciar hunting para Tech Lead",
					Turnover:    "- Entrevista de desligamento (João Silva)",
					DHO:         "- Treinamento de Liderança Módulo 1",
					Projects:    "- Planejamento Estratégico 2026",
				},
			},
			{
				ID:            "w-prev-1",
				WeekRange:     "24 Nov - 30 Nov, 2025",
				TopPriorities: [PrioritySlots]string{"Analista de RH (SCS)", "Dev Senior (SCS)", "Analista Fiscal (PFU)", "Possíveis Entradas"},
				PriorityPipelines: [PrioritySlots][]PipelineCandidate{
					{
						{ID: "10", Name: "Marcos Dev", Status: StatusInteraction},
						{ID: "11", Name: "João Pedro", Status: StatusInterviewRecruiter},
					},
					{
						{ID: "12", Name: "Lucas Silva", Status: StatusInteraction},
					},
					{
						{ID: "13", Name: "Roberto Firmino", Status: StatusInteraction},
					},
					{},
				},
				ReportThisWeek: ReportSection{
					Recruitment: "- Entrevistas finais Dev Senior",
					Turnover:    "- Sem movimentações",
					DHO:         "- Planejamento da festa de fim de ano",
					Projects:    "- Reunião de alinhamento com Diretoria",
				},
				ReportNextWeek: ReportSection{
					Recruitment: "- Fechar vaga Dev Senior",
					DHO:         "- Disparar pesquisa de clima",
				},
			},
			{
				ID:            "w-prev-2",
				WeekRange:     "17 Nov - 23 Nov, 2025",
				TopPriorities: [PrioritySlots]string{"Auxiliar Adm (SMA)", "Dev Senior (SCS)", "Coordenador Logística", "Possíveis Entradas"},
				PriorityPipelines: [PrioritySlots][]PipelineCandidate{
					{
						{ID: "16", Name: "Carlos Lima", Status: StatusInteraction},
					},
					{
						{ID: "17", Name: "Marcos Dev", Status: StatusInteraction},
						{ID: "18", Name: "Pedro Santos", Status: StatusInteraction},
					},
					{},
					{},
				},
				ReportThisWeek: ReportSection{
					Recruitment: "- Abertura de vagas Novembro",
					Turnover:    "- 3 Desligamentos (Produção)",
					Projects:    "- Atualização das políticas de benefícios",
				},
			},
		},
		StrategicData: StrategicData{
			Semester1Goals: []StrategicGoal{
				{ID: "g1", Text: "Implementar novo sistema de ATS", Achieved: true},
				{ID: "g2", Text: "Reduzir turnover em 10%", Achieved: false},
				{ID: "g3", Text: "Finalizar ciclo de Avaliação de Desempenho", Achieved: true},
			},
			Semester2Goals: []StrategicGoal{
				{ID: "g4", Text: "Lançar Universidade Corporativa", Achieved: false},
				{ID: "g5", Text: "Revisão do plano de Cargos e Salários", Achieved: false},
				{ID: "g6", Text: "Certificação Great Place to Work", Achieved: false},
			},
			MonthlyReports: reports,
		},
	}
}
