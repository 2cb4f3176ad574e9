package translate

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// s2t maps high-frequency simplified Chinese characters to their traditional
// forms. Character-level mapping cannot resolve one-to-many cases that need
// word context, but models prompted for Traditional Chinese rarely emit more
// than stray simplified characters, and those are what this pass cleans up.
var s2t = map[rune]rune{
	'万': '萬', '与': '與', '专': '專', '业': '業', '东': '東', '丝': '絲', '两': '兩',
	'严': '嚴', '个': '個', '临': '臨', '为': '為', '举': '舉', '义': '義',
	'乐': '樂', '习': '習', '乡': '鄉', '书': '書', '买': '買', '乱': '亂', '争': '爭',
	'于': '於', '亏': '虧', '云': '雲', '亚': '亞', '产': '產', '亲': '親', '亿': '億',
	'仅': '僅', '从': '從', '仓': '倉', '仪': '儀', '们': '們', '价': '價', '众': '眾',
	'优': '優', '会': '會', '传': '傳', '伤': '傷', '伦': '倫', '体': '體', '余': '餘',
	'佣': '傭', '侧': '側', '侨': '僑', '俭': '儉', '债': '債', '倾': '傾', '偿': '償',
	'储': '儲', '儿': '兒', '党': '黨', '兰': '蘭', '关': '關', '兴': '興', '兹': '茲',
	'养': '養', '兽': '獸', '内': '內', '冈': '岡', '册': '冊', '写': '寫', '军': '軍',
	'农': '農', '冲': '沖', '决': '決', '况': '況', '净': '淨', '准': '準', '凤': '鳳',
	'凭': '憑', '凯': '凱', '击': '擊', '刘': '劉', '则': '則', '刚': '剛', '创': '創',
	'别': '別', '制': '製', '刹': '剎', '剂': '劑', '剑': '劍', '办': '辦', '务': '務',
	'动': '動', '势': '勢', '劳': '勞', '医': '醫', '华': '華', '协': '協',
	'单': '單', '卖': '賣', '占': '佔', '卫': '衛', '厂': '廠', '历': '歷', '厅': '廳',
	'压': '壓', '厉': '厲', '县': '縣', '参': '參', '双': '雙', '发': '發', '变': '變',
	'叙': '敘', '号': '號', '叶': '葉', '吓': '嚇', '吗': '嗎', '员': '員', '呜': '嗚',
	'响': '響', '哑': '啞', '唤': '喚', '啸': '嘯', '喷': '噴', '团': '團', '园': '園',
	'围': '圍', '图': '圖', '圆': '圓', '块': '塊', '坚': '堅', '坛': '壇', '坟': '墳',
	'坠': '墜', '垄': '壟', '垒': '壘', '垦': '墾', '备': '備', '复': '復', '够': '夠',
	'头': '頭', '夹': '夾', '夺': '奪', '奋': '奮', '奖': '獎', '妇': '婦', '妈': '媽',
	'妆': '妝', '娱': '娛', '婴': '嬰', '孙': '孫', '学': '學', '宁': '寧',
	'宝': '寶', '实': '實', '审': '審', '宪': '憲', '宫': '宮', '宽': '寬',
	'宾': '賓', '对': '對', '寻': '尋', '导': '導', '将': '將', '尔': '爾', '尘': '塵',
	'尝': '嘗', '层': '層', '屡': '屢', '属': '屬', '岁': '歲', '岛': '島', '币': '幣',
	'师': '師', '带': '帶', '帮': '幫', '干': '幹', '并': '並', '广': '廣', '庄': '莊',
	'庆': '慶', '库': '庫', '应': '應', '庙': '廟', '废': '廢', '开': '開', '异': '異',
	'弃': '棄', '弹': '彈', '强': '強', '归': '歸', '当': '當', '录': '錄', '彻': '徹',
	'径': '徑', '忆': '憶', '志': '誌', '态': '態', '怀': '懷', '怜': '憐', '总': '總',
	'恶': '惡', '恼': '惱', '悬': '懸', '惊': '驚', '惧': '懼', '惩': '懲', '惫': '憊',
	'愿': '願', '戏': '戲', '战': '戰', '户': '戶', '护': '護', '报': '報', '担': '擔',
	'拟': '擬', '拥': '擁', '择': '擇', '挂': '掛', '挡': '擋', '挤': '擠', '挥': '揮',
	'损': '損', '换': '換', '据': '據', '掷': '擲', '摄': '攝', '摆': '擺', '摇': '搖',
	'撑': '撐', '敌': '敵', '数': '數', '斋': '齋', '斗': '鬥',
	'断': '斷', '无': '無', '旧': '舊', '时': '時', '显': '顯', '晋': '晉', '晒': '曬',
	'晓': '曉', '暂': '暫', '术': '術', '机': '機', '杂': '雜', '权': '權',
	'条': '條', '来': '來', '杨': '楊', '构': '構', '枪': '槍', '标': '標', '栏': '欄',
	'树': '樹', '样': '樣', '档': '檔', '桥': '橋', '检': '檢', '楼': '樓', '欢': '歡',
	'欧': '歐', '残': '殘', '杀': '殺', '毕': '畢', '毙': '斃', '气': '氣',
	'汇': '匯', '汉': '漢', '汤': '湯', '沟': '溝', '没': '沒', '泪': '淚', '泽': '澤',
	'洁': '潔', '济': '濟', '浅': '淺', '测': '測', '浏': '瀏', '浓': '濃', '涛': '濤',
	'涝': '澇', '润': '潤', '涨': '漲', '渐': '漸', '渔': '漁', '温': '溫', '湾': '灣',
	'湿': '濕', '满': '滿', '滚': '滾', '滤': '濾', '灭': '滅', '灯': '燈', '灵': '靈',
	'灾': '災', '炼': '煉', '烂': '爛', '烦': '煩', '热': '熱', '爱': '愛', '牵': '牽',
	'状': '狀', '犹': '猶', '独': '獨', '猎': '獵', '猫': '貓', '献': '獻', '玛': '瑪',
	'环': '環', '现': '現', '琼': '瓊', '电': '電', '画': '畫', '畅': '暢',
	'疗': '療', '盖': '蓋', '监': '監', '盘': '盤', '确': '確', '码': '碼',
	'础': '礎', '礼': '禮', '祸': '禍', '离': '離', '种': '種', '积': '積', '称': '稱',
	'稳': '穩', '穷': '窮', '竞': '競', '笔': '筆', '笼': '籠', '筛': '篩',
	'签': '簽', '简': '簡', '类': '類', '粮': '糧', '紧': '緊', '纠': '糾', '红': '紅',
	'纤': '纖', '约': '約', '级': '級', '纪': '紀', '纯': '純', '纳': '納', '纸': '紙',
	'纹': '紋', '纺': '紡', '线': '線', '练': '練', '组': '組', '细': '細', '织': '織',
	'终': '終', '绍': '紹', '经': '經', '结': '結', '绕': '繞', '绘': '繪', '给': '給',
	'络': '絡', '绝': '絕', '统': '統', '继': '繼', '绩': '績', '维': '維', '绿': '綠',
	'网': '網', '罗': '羅', '罚': '罰', '罢': '罷', '联': '聯', '听': '聽',
	'职': '職', '肃': '肅', '肠': '腸', '肤': '膚', '胁': '脅', '胜': '勝', '脏': '臟',
	'脑': '腦', '脱': '脫', '舰': '艦', '艺': '藝', '节': '節', '芦': '蘆', '苏': '蘇',
	'药': '藥', '荐': '薦', '荣': '榮', '获': '獲', '营': '營', '虑': '慮', '虽': '雖',
	'蚁': '蟻', '蚂': '螞', '蜗': '蝸', '衬': '襯', '袄': '襖',
	'装': '裝', '见': '見', '观': '觀', '规': '規', '视': '視', '览': '覽', '觉': '覺',
	'触': '觸', '计': '計', '订': '訂', '认': '認', '讨': '討', '让': '讓', '训': '訓',
	'议': '議', '讯': '訊', '记': '記', '讲': '講', '许': '許', '论': '論', '设': '設',
	'访': '訪', '证': '證', '评': '評', '识': '識', '诉': '訴', '词': '詞', '译': '譯',
	'试': '試', '诗': '詩', '话': '話', '询': '詢', '该': '該', '详': '詳', '语': '語',
	'误': '誤', '说': '說', '请': '請', '诸': '諸', '读': '讀', '课': '課', '谁': '誰',
	'调': '調', '谈': '談', '谊': '誼', '谋': '謀', '谢': '謝', '谣': '謠', '谱': '譜',
	'负': '負', '贡': '貢', '财': '財', '责': '責', '贤': '賢', '败': '敗', '账': '賬',
	'货': '貨', '质': '質', '贩': '販', '贪': '貪', '购': '購', '贵': '貴', '费': '費',
	'贸': '貿', '贺': '賀', '资': '資', '赏': '賞', '赖': '賴', '赛': '賽', '赞': '讚',
	'赢': '贏', '赵': '趙', '跃': '躍', '践': '踐', '车': '車', '轨': '軌', '轩': '軒',
	'转': '轉', '轮': '輪', '软': '軟', '轻': '輕', '载': '載', '较': '較', '辅': '輔',
	'辆': '輛', '辈': '輩', '辉': '輝', '输': '輸', '辞': '辭', '辩': '辯', '边': '邊',
	'达': '達', '过': '過', '迈': '邁', '运': '運', '还': '還', '这': '這', '进': '進',
	'远': '遠', '违': '違', '连': '連', '迟': '遲', '适': '適', '选': '選', '逊': '遜',
	'递': '遞', '逻': '邏', '遗': '遺', '邓': '鄧', '邮': '郵', '邻': '鄰', '郑': '鄭',
	'释': '釋', '里': '裡', '针': '針', '钓': '釣',
	'钟': '鐘', '钢': '鋼', '钱': '錢', '铁': '鐵', '铃': '鈴', '铅': '鉛', '银': '銀',
	'铺': '鋪', '链': '鏈', '销': '銷', '锁': '鎖', '错': '錯', '锡': '錫', '锦': '錦',
	'键': '鍵', '镇': '鎮', '镜': '鏡', '长': '長', '门': '門', '闪': '閃', '闭': '閉',
	'问': '問', '闲': '閒', '间': '間', '闹': '鬧', '闻': '聞', '阅': '閱', '队': '隊',
	'阳': '陽', '阴': '陰', '阵': '陣', '阶': '階', '际': '際', '陆': '陸', '陈': '陳',
	'险': '險', '随': '隨', '隐': '隱', '难': '難', '雾': '霧', '静': '靜', '面': '面',
	'韩': '韓', '页': '頁', '顶': '頂', '项': '項', '顺': '順', '须': '須', '顾': '顧',
	'飘': '飄',
	'顿': '頓', '预': '預', '领': '領', '频': '頻', '题': '題', '颜': '顏', '额': '額',
	'风': '風', '飞': '飛', '饭': '飯', '饮': '飲', '饰': '飾', '饱': '飽', '馆': '館',
	'马': '馬', '驱': '驅', '驶': '駛', '验': '驗', '骑': '騎', '骗': '騙', '骤': '驟',
	'鱼': '魚', '鲜': '鮮', '鸟': '鳥', '鸡': '雞', '鸣': '鳴', '鸿': '鴻',
	'麦': '麥', '黄': '黃', '齐': '齊', '齿': '齒', '龄': '齡', '龙': '龍', '龟': '龜',
}

// s2tTransformer maps simplified characters to traditional in one pass.
var s2tTransformer = runes.Map(func(r rune) rune {
	if t, ok := s2t[r]; ok {
		return t
	}
	return r
})

// NormalizeTraditional converts simplified Chinese characters in text to
// their traditional forms. Applied to backend output before caching when the
// target is zh-tw, so mixed-script model output never poisons the cache.
func NormalizeTraditional(text string) string {
	out, _, err := transform.String(s2tTransformer, text)
	if err != nil {
		return text
	}
	return out
}

// NeedsScriptNormalization reports whether backend output for the target
// language must pass through NormalizeTraditional.
func NeedsScriptNormalization(targetLang string) bool {
	return NormalizeLangCode(targetLang) == "zh-tw"
}
