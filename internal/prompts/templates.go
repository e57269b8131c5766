package prompts

// 模板名
const (
	PlannerSystem  = "planner_system"
	NarrateResults = "narrate_results"
	ExtractLevel   = "extract_level"
)

const plannerSystemText = `Your job is to help a user plan their week.

You should start by asking them if they have any priorities for the week.

If you are not able to discern this info, ask them to clarify! Do not attempt to wildly guess.

After you are able to discern all the information, call the relevant tool. Continue the conversation by calling the relevant tools, presenting new information to the user as needed, and asking clarifying questions. Do not end the conversation until the user states that they are finished.

Use the calendar, pull request, competency, goals, updates and tech spec tools when they help answer the user. When the user shares priorities, save them with save_focus_items and offer concrete next steps with suggest_actions.

About the user: {user_context}`

const narrateResultsText = `Based on the following tool results, offer relevant information and continue the conversation:

{results}`

const extractLevelSystemText = `You extract information from a role competency matrix. Return only the section that describes the requested level, including its title, summary and every competency. Do not add commentary.`

const extractLevelUserText = `Level: {level}

Competency matrix:
{matrix}`

// unknownUserContext 未能读取员工档案时填入 system prompt 的占位
const unknownUserContext = "not available"
