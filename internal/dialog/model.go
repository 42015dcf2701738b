package dialog

type State string

const (
	StateIdle State = "idle"

	// Регистрация нового сотрудника
	StateRegRegion   State = "reg_region"
	StateRegLogin    State = "reg_login"
	StateRegPassword State = "reg_password"
	StateRegRepeat   State = "reg_repeat"

	// Вход в существующий профиль
	StateLoginPickUser State = "login_pick_user"
	StateLoginPassword State = "login_password"

	// Отчёт о визите (общая часть: врач и аптека)
	StateVisitPickDistrict State = "visit_pick_district"
	StateVisitPickRoad     State = "visit_pick_road"
	StateVisitPickLPU      State = "visit_pick_lpu"
	StateVisitPickDoctor   State = "visit_pick_doctor" // только ветка врача
	StateVisitHasOrder     State = "visit_has_order"   // только ветка аптеки
	StateVisitPickMeds     State = "visit_pick_meds"
	StateVisitReqQty       State = "visit_req_qty" // цикл количеств (аптека)
	StateVisitRemQty       State = "visit_rem_qty"
	StateVisitTerm         State = "visit_term" // условия договора (врач)
	StateVisitComment      State = "visit_comment"
	StateVisitConfirm      State = "visit_confirm"

	// Добавление ЛПУ/аптеки из экрана выбора
	StateAddLPUName State = "add_lpu_name"
	StateAddLPUURL  State = "add_lpu_url"
	StateAddAptName State = "add_apt_name"
	StateAddAptURL  State = "add_apt_url"

	// Добавление врача
	StateAddDocName      State = "add_doc_name"
	StateAddDocSpec      State = "add_doc_spec"
	StateAddDocPhone     State = "add_doc_phone"
	StateAddDocBirthdate State = "add_doc_birthdate"

	// Админ
	StateAdmTaskText   State = "adm_task_text"
	StateAdmExportUser State = "adm_export_user"
)

// Kind — тип отчёта в текущем диалоге.
const (
	KindDoctor     = "doc"
	KindApothecary = "apt"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
