package repository

import "leaf-care-go/internal/model"

// KnowledgeRepository 提供只读的养护知识条目。
type KnowledgeRepository interface {
	List() []model.KnowledgeArticle
	Get(id string) (model.KnowledgeArticle, bool)
}

type memoryKnowledgeRepository struct {
	order    []string
	articles map[string]model.KnowledgeArticle
}

// NewMemoryKnowledgeRepository 以给定顺序保存条目，重复 ID 以后者为准。
func NewMemoryKnowledgeRepository(articles ...model.KnowledgeArticle) KnowledgeRepository {
	r := &memoryKnowledgeRepository{articles: make(map[string]model.KnowledgeArticle, len(articles))}
	for _, a := range articles {
		if _, exists := r.articles[a.ID]; !exists {
			r.order = append(r.order, a.ID)
		}
		r.articles[a.ID] = a
	}
	return r
}

// NewBuiltinKnowledgeRepository 返回内置的四篇养护指南。
func NewBuiltinKnowledgeRepository() KnowledgeRepository {
	return NewMemoryKnowledgeRepository(builtinArticles...)
}

func (r *memoryKnowledgeRepository) List() []model.KnowledgeArticle {
	out := make([]model.KnowledgeArticle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.articles[id])
	}
	return out
}

func (r *memoryKnowledgeRepository) Get(id string) (model.KnowledgeArticle, bool) {
	a, ok := r.articles[id]
	return a, ok
}

var builtinArticles = []model.KnowledgeArticle{
	{
		ID:    "多肉浇水指南",
		Title: "多肉植物浇水指南",
		Content: `
        <p>多肉植物浇水核心原则：<strong>宁干勿湿，浇则浇透</strong></p>
        <p>1. 浇水频率：</p>
        <ul>
            <li>春/秋（生长季）：7-10天一次</li>
            <li>夏季：15-20天一次（少量浇水，避免积水）</li>
            <li>冬季：5°C以上10-15天一次，5°C以下断水</li>
        </ul>
        <p>2. 浇水方法：</p>
        <ul>
            <li>沿盆边缓慢浇水，避免浇到叶片中心</li>
            <li>直到盆底有水流出，确保根系充分吸收水分</li>
            <li>浇水后放在通风处，加速土壤干燥</li>
        </ul>
        `,
	},
	{
		ID:    "绿萝养护技巧",
		Title: "绿萝日常养护与黄叶处理",
		Content: `
        <p>绿萝是非常适合室内养护的观叶植物，养护要点如下：</p>
        <p>1. 光照：适合明亮的散射光环境，避免阳光直射</p>
        <p>2. 浇水：保持土壤湿润但不积水，见干见湿</p>
        <p>3. 黄叶处理：及时摘除老叶，检查浇水情况</p>
        `,
	},
	{
		ID:    "室内植物光照需求",
		Title: "常见室内植物光照需求表",
		Content: `
        <p>不同植物对光照的需求差异较大，合理摆放是养护关键：</p>
        <p>1. 喜光植物（需放在朝南窗台）：</p>
        <ul>
            <li>多肉植物：每天需要4-6小时光照</li>
            <li>太阳花、茉莉：需要充足直射光</li>
        </ul>
        <p>2. 中等光照（可放在朝东或朝西窗台）：</p>
        <ul>
            <li>绿萝、常春藤：适合明亮散射光</li>
        </ul>
        `,
	},
	{
		ID:    "病虫害防治",
		Title: "植物常见病虫害防治方法",
		Content: `
        <p>植物常见病虫害及防治方法：</p>
        <p>1. 蚜虫：用清水冲洗，或用肥皂水喷洒</p>
        <p>2. 红蜘蛛：增加空气湿度，用湿布擦拭叶片</p>
        <p>3. 白粉病：及时摘除病叶，保持通风</p>
        `,
	},
}
